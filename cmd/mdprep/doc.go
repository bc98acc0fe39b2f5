// Command mdprep prepares GROMACS molecular dynamics input files for pairs
// of small molecules listed in a CSV work table. It downloads structures
// from PubChem, converts and minimizes them with Open Babel, generates
// topologies with ACPype, and deploys simulation templates into per-sample
// directories.
package main
