package filelog

var std = New(Config{})

// Default returns the process-wide Logger used by the package-level functions. It writes into the working directory.
func Default() *Logger {
	return std
}

// Index returns the run index of the process-wide Logger.
func Index() int {
	return std.Index()
}

// Log appends a formatted record to the (name, DefaultExtension) file of the process-wide Logger.
func Log(name, format string, args ...any) error {
	return std.Log(name, format, args...)
}

// LogExt appends a formatted record to the (name, ext) file of the process-wide Logger.
func LogExt(name, ext, format string, args ...any) error {
	return std.LogExt(name, ext, format, args...)
}

// Write appends payload to the (name, ext) file of the process-wide Logger.
func Write(name, ext string, payload []byte) error {
	return std.Write(name, ext, payload)
}
