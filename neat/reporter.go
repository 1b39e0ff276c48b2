package neat

// Reporter receives notifications about the progress of an evolution run.
// The engine itself produces no output; callers attach reporters to observe
// generations, speciation and termination.
type Reporter interface {
	StartGeneration(generation int)
	PostEvaluate(generation int, population map[int]*Genome, best *Genome)
	PostSpeciate(generation int, species *SpeciesSet)
	SpeciesStagnant(speciesID int, species *Species)
	CompleteExtinction(generation int)
	EndGeneration(generation int, population map[int]*Genome, species *SpeciesSet)
	FoundSolution(generation int, best *Genome)
}

// ReporterSet broadcasts events to a list of reporters.
type ReporterSet struct {
	reporters []Reporter
}

// Add registers a reporter.
func (rs *ReporterSet) Add(r Reporter) {
	if r != nil {
		rs.reporters = append(rs.reporters, r)
	}
}

func (rs *ReporterSet) startGeneration(generation int) {
	for _, r := range rs.reporters {
		r.StartGeneration(generation)
	}
}

func (rs *ReporterSet) postEvaluate(generation int, population map[int]*Genome, best *Genome) {
	for _, r := range rs.reporters {
		r.PostEvaluate(generation, population, best)
	}
}

func (rs *ReporterSet) postSpeciate(generation int, species *SpeciesSet) {
	for _, r := range rs.reporters {
		r.PostSpeciate(generation, species)
	}
}

func (rs *ReporterSet) speciesStagnant(speciesID int, species *Species) {
	for _, r := range rs.reporters {
		r.SpeciesStagnant(speciesID, species)
	}
}

func (rs *ReporterSet) completeExtinction(generation int) {
	for _, r := range rs.reporters {
		r.CompleteExtinction(generation)
	}
}

func (rs *ReporterSet) endGeneration(generation int, population map[int]*Genome, species *SpeciesSet) {
	for _, r := range rs.reporters {
		r.EndGeneration(generation, population, species)
	}
}

func (rs *ReporterSet) foundSolution(generation int, best *Genome) {
	for _, r := range rs.reporters {
		r.FoundSolution(generation, best)
	}
}

// BaseReporter is a no-op Reporter. Embed it to implement only the events
// of interest.
type BaseReporter struct{}

func (BaseReporter) StartGeneration(int)                              {}
func (BaseReporter) PostEvaluate(int, map[int]*Genome, *Genome)       {}
func (BaseReporter) PostSpeciate(int, *SpeciesSet)                    {}
func (BaseReporter) SpeciesStagnant(int, *Species)                    {}
func (BaseReporter) CompleteExtinction(int)                           {}
func (BaseReporter) EndGeneration(int, map[int]*Genome, *SpeciesSet)  {}
func (BaseReporter) FoundSolution(int, *Genome)                       {}
