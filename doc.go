// Package filelog appends formatted lines to plain files whose names carry a run index, so each run of a program writes its own set of log files.
//
// A record for log name "sim" with extension "csv" in run 3 is appended to "sim_3.csv". The run index is resolved once, the first time a Logger is used:
//   - If the FILE_LOG_INDEX environment variable is set, its value plus one is the run index and the counter file is left alone. Many processes can share one index this way.
//   - Otherwise the "log_index" counter file is read, incremented, and written back.
//   - A missing or malformed value counts as zero, so a first run gets index 1.
//
// The package-level functions use a process-wide Logger rooted in the working directory:
//
//	filelog.Log("log", "Hello")                          // appends "Hello\n" to log_<index>.log
//	filelog.LogExt("log", "xyz", "%d", filelog.Index())  // appends "<index>\n" to log_<index>.xyz
//
// Callers that prefer not to rely on global state build their own with New and pass it around. Each write opens, appends, and closes the file; nothing is buffered. A
// caller that wants CSV writes its own header as the first record.
package filelog
