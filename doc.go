// Package rmi trains recursive model indexes (RMIs): hierarchical
// stacks of small regression models that jointly approximate a sorted
// dataset's cumulative distribution function, for learned-index
// lookups that replace or complement B-trees.
//
// The package is organized around three coupled subsystems: a
// hierarchical training pipeline (TwoLayer, PartialThreeLayer,
// ThreeLayer, NaiveThreeLayer, MultiLayer), a Pareto-efficient
// configuration optimizer (FindParetoEfficientConfigs), and an
// error-bounded cache-fix transform (TrainBounded). See DESIGN.md for
// how each part maps back to its reference implementation.
//
// The structure is built once over a read-only sorted snapshot;
// updates and inserts are out of scope. Lookup-time serving is also
// out of scope — this package emits a static TrainedRMI artifact for
// a downstream code generator to consume.
package rmi
