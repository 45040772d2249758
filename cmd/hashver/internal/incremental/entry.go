// Package incremental records the hashversions of the last computation so
// later runs can report which modules changed since.
package incremental

// Entry is the recorded state of one module.
type Entry struct {
	Module      string `json:"module"` // groupId:artifactId:version
	Key         string `json:"key"`    // output key
	OwnHash     string `json:"own_hash"`
	HashVersion string `json:"hashversion"`
}
