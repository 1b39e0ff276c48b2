package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
)

// populationSaveData holds the serializable parts of a Population. The
// config is not saved; LoadCheckpoint reloads it from the original file and
// re-links the pointers gob cannot restore meaningfully.
type populationSaveData struct {
	Population map[int]*Genome
	SpeciesSet *SpeciesSet
	Generation int
	BestGenome *Genome

	// Reproduction state is flattened here: the Reproduction struct itself
	// holds a Stagnation with a function field, which gob cannot encode.
	NextGenomeKey int
	Ancestors     map[int][]int

	// Node-key allocator position. Reloading the config resets it to
	// NumOutputs; without this a resumed run would re-issue keys that
	// existing hidden nodes already hold.
	NodeKeyIndex int
}

func registerCheckpointTypes() {
	gob.Register(map[int]*Genome{})
	gob.Register(map[ConnectionKey]*ConnectionGene{})
	gob.Register(map[int]*NodeGene{})
	gob.Register(map[int]*Species{})
	gob.Register(map[int]int{})
	gob.Register([]int{})
}

// SaveCheckpoint writes a gzip-compressed gob snapshot of the population.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file %q: %w", filePath, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	registerCheckpointTypes()
	saveData := populationSaveData{
		Population:    p.Population,
		SpeciesSet:    p.SpeciesSet,
		Generation:    p.Generation,
		BestGenome:    p.BestGenome,
		NextGenomeKey: p.Reproduction.NextGenomeKey,
		Ancestors:     p.Reproduction.Ancestors,
		NodeKeyIndex:  p.Config.Genome.NodeKeyIndex,
	}
	if err := gob.NewEncoder(gz).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	return nil
}

// LoadCheckpoint restores a population from a snapshot. The original config
// file is required to rebuild the Config; the RNG is reseeded from seed
// because its state is not part of the snapshot.
func LoadCheckpoint(checkpointPath, configPath string, seed int64) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q for checkpoint: %w", configPath, err)
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file %q: %w", checkpointPath, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %q: %w", checkpointPath, err)
	}
	defer gz.Close()

	registerCheckpointTypes()
	saveData := populationSaveData{}
	if err := gob.NewDecoder(gz).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	// LoadConfig starts the node-key allocator at NumOutputs; move it past
	// every node the snapshot carries so NextNodeKey never re-issues a key a
	// hidden node already holds.
	config.Genome.NodeKeyIndex = saveData.NodeKeyIndex
	if next := maxNodeKey(saveData) + 1; next > config.Genome.NodeKeyIndex {
		config.Genome.NodeKeyIndex = next
	}
	if config.Genome.NodeKeyIndex < config.Genome.NumOutputs {
		config.Genome.NodeKeyIndex = config.Genome.NumOutputs
	}

	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to re-initialize stagnation from loaded config: %w", err)
	}
	reproduction := NewReproduction(&config.Reproduction, stagnation)
	reproduction.NextGenomeKey = saveData.NextGenomeKey
	if saveData.Ancestors != nil {
		reproduction.Ancestors = saveData.Ancestors
	}
	relinkGenomes(saveData.Population, &config.Genome)
	if saveData.BestGenome != nil {
		saveData.BestGenome.Config = &config.Genome
	}
	if saveData.SpeciesSet == nil {
		saveData.SpeciesSet = NewSpeciesSet(&config.SpeciesSet)
	}
	saveData.SpeciesSet.Config = &config.SpeciesSet
	for _, sp := range saveData.SpeciesSet.Species {
		relinkGenomes(sp.Members, &config.Genome)
		if sp.Representative != nil {
			sp.Representative.Config = &config.Genome
		}
	}

	return &Population{
		Config:       config,
		Population:   saveData.Population,
		SpeciesSet:   saveData.SpeciesSet,
		Reproduction: reproduction,
		Stagnation:   stagnation,
		Generation:   saveData.Generation,
		BestGenome:   saveData.BestGenome,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

// maxNodeKey scans every genome in the snapshot for its largest node key.
func maxNodeKey(saveData populationSaveData) int {
	max := -1
	scan := func(g *Genome) {
		if g == nil {
			return
		}
		for k := range g.Nodes {
			if k > max {
				max = k
			}
		}
	}
	for _, g := range saveData.Population {
		scan(g)
	}
	scan(saveData.BestGenome)
	if saveData.SpeciesSet != nil {
		for _, sp := range saveData.SpeciesSet.Species {
			for _, g := range sp.Members {
				scan(g)
			}
			scan(sp.Representative)
		}
	}
	return max
}

func relinkGenomes(genomes map[int]*Genome, config *GenomeConfig) {
	for _, g := range genomes {
		g.Config = config
	}
}

// SaveGenome writes a single genome (typically the winner of a run) as a
// gzip-compressed gob file.
func SaveGenome(g *Genome, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create genome file %q: %w", filePath, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	registerCheckpointTypes()
	if err := gob.NewEncoder(gz).Encode(g); err != nil {
		return fmt.Errorf("failed to encode genome: %w", err)
	}
	return nil
}

// LoadGenome reads a genome saved with SaveGenome and re-links the given
// genome config.
func LoadGenome(filePath string, config *GenomeConfig) (*Genome, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open genome file %q: %w", filePath, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome file %q: %w", filePath, err)
	}
	defer gz.Close()

	registerCheckpointTypes()
	g := &Genome{}
	if err := gob.NewDecoder(gz).Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode genome: %w", err)
	}
	g.Config = config
	return g, nil
}
