package log

import (
	"fmt"
	"net"
	"os"
	"path"
	"time"

	"nutrimatch-go-worker/utils"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-extras/elogrus.v7"
)

const appName = "nutrimatch-golang-worker"

type LogService struct{}

// LoggerInit builds a logger writing to logs/<date>/<name>.log, with the
// elasticsearch and logstash hooks attached when enabled.
func (l *LogService) LoggerInit(name string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := utils.EnvConfig.Log
	if cfg.FileEnable == 1 {
		if src, err := openLogFile(name); err != nil {
			fmt.Println(err.Error())
		} else {
			logger.Out = src
		}
	}

	if cfg.ElkEnable == 1 {
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.ElkURL},
		})
		if err != nil {
			logger.Debug(err.Error())
		} else if hook, err := elogrus.NewAsyncElasticHook(client, appName, logrus.DebugLevel, cfg.ElkIndex); err != nil {
			logger.Debug(err.Error())
		} else {
			logger.Hooks.Add(hook)
		}
	}

	if cfg.LogstashEnable == 1 {
		conn, err := net.Dial("udp", cfg.LogstashURL)
		if err != nil {
			logger.Debug(err)
		} else {
			hook := logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": appName}))
			logger.Hooks.Add(hook)
		}
	}

	return logger
}

func openLogFile(name string) (*os.File, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logFilePath := path.Join(dir, "logs", time.Now().In(utils.Location()).Format(utils.DateLayout))
	if err := os.MkdirAll(logFilePath, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path.Join(logFilePath, name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
