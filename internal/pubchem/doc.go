// Package pubchem fetches compound structure files from the PubChem PUG REST
// service. The only retry behavior is the 3D-to-2D record fallback; anything
// beyond that is the caller's concern.
package pubchem
