package manifest

// Manifest is the JSON record of one batch conversion run.
type Manifest struct {
	Version     int            `json:"version"`
	GeneratedAt string         `json:"generated_at"`
	Entries     []Entry        `json:"entries"`
	Failures    []FailureEntry `json:"failures,omitempty"`
	Stats       Stats          `json:"stats"`
}

// Entry describes one successfully converted file.
type Entry struct {
	Dest string `json:"dest"`
	Size int64  `json:"size"` // bytes on disk
	Hash string `json:"hash"` // first 16 hex chars of xxhash64
}

// FailureEntry records a file that failed to convert.
type FailureEntry struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Stats aggregates run metrics.
type Stats struct {
	Converted        int   `json:"converted"`
	Failed           int   `json:"failed"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
