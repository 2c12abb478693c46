package logging

import (
	"github.com/UlybinDA/scxrd-sac/config"
	gomodlog "github.com/cyverse-de/go-mod/logging"
	"github.com/sirupsen/logrus"
)

func GetLogger() *logrus.Entry {
	return gomodlog.Log.WithFields(logrus.Fields{"service": config.ServiceName})
}

func SetupLogging(level string) {
	gomodlog.SetupLogging(level)
}
