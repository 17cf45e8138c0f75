package logging

import (
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Production uses JSON output;
// everything else uses timestamped text. Unknown levels fall back to info.
func Setup(level string, production bool) {
	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
		logrus.WithField("level", level).Warn("unknown log level, using info")
	}
	logrus.SetLevel(parsed)
}
