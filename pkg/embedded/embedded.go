package embedded

import (
	_ "embed"
)

// Web UI assets compiled into the binary so the API ships as a single
// artifact with no files to deploy alongside it.
//
//go:embed web/index.html
var IndexHTML []byte
