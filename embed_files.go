package embedfiles

import "embed"

// Samples holds one small log file per supported input format, used by the
// demo command.
//
//go:embed samples/*.log
var Samples embed.FS
