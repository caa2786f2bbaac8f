package output

// SchemaVersion identifies the NDJSON wrapper schema. Wrapper objects carry
// it so consumers can detect breaking changes; bare record lines do not.
const SchemaVersion = 1
