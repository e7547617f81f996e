package logging

// NewNopLogger 创建不输出任何内容的 Logger
func NewNopLogger() Logger {
	return NewLoggerFactory(LogLevelFatal + 1).CreateLogger("nop")
}
