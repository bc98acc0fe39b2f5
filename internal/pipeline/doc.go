// Package pipeline owns the per-sample step chain that turns a pair of
// compound ids into a simulation-ready directory of GROMACS input files.
//
// Each sample runs the same strict sequence: fetch both structures from
// PubChem, convert to MOL2, minimize geometry, rewrite residue names,
// generate AMBER topologies via acpype, collect the _GMX outputs, split the
// shared atom type parameters into sidecars, and deploy the template file
// set. The first failing step aborts the sample and the failure is recorded
// as an Outcome; samples never affect each other.
//
// Completion is derived, not persisted: a sample directory holding all four
// key artifacts is considered done and skipped on re-runs.
package pipeline
