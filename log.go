package chromiumoxide

import (
	"github.com/sirupsen/logrus"
)

// Logger is the default package logger. WithLogf and WithErrorf override it
// per browser; debug output goes only to a function set with WithDebugf.
var Logger = logrus.New()

func defaultLogf(format string, v ...interface{}) {
	Logger.Infof(format, v...)
}

func defaultErrf(format string, v ...interface{}) {
	Logger.Errorf(format, v...)
}
