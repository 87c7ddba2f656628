package log

import "log"

// Logger filters client log messages by debug level.
// Levels: 0 error, 1 - warning, 2 - info, 3 - debug.
type Logger struct {
	debugLevel uint
}

func (l *Logger) SetDebugLevel(debugLevel uint) {
	l.debugLevel = debugLevel
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.debugLevel > 2 {
		log.Printf("D! "+format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.debugLevel > 1 {
		log.Printf("I! "+format, v...)
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.debugLevel > 0 {
		log.Printf("W! "+format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	log.Printf("E! "+format, v...)
}
