// Package neat implements the NeuroEvolution of Augmenting Topologies (NEAT)
// algorithm: a genetic algorithm that evolves both the weights and the
// topology of artificial neural networks.
//
// The implementation follows the original paper by Kenneth O. Stanley and
// Risto Miikkulainen and the configuration conventions of the neat-python
// project, so existing neat-python INI files work with minor edits.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("configs/flappy-config")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pop, err := neat.NewPopulation(config, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for i := 0; i < 100; i++ {
//		winner, err := pop.RunGeneration(evalGenomes)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if winner != nil {
//			break
//		}
//	}
package neat
