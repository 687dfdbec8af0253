package platform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Hook 按天切分日志文件
type Hook struct {
	writer   *os.File
	logPath  string
	fileName string
	fileDate string
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(entry *logrus.Entry) error {
	timer := entry.Time.Format("2006-01-02")
	line, _ := entry.String()
	//需要切换日志文件
	if h.fileDate != timer {
		h.fileDate = timer
		h.writer.Close()
		filename := fmt.Sprintf("%s/%s-%s.log", h.logPath, h.fileDate, h.fileName)
		h.writer, _ = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	}
	h.writer.Write([]byte(line))
	return nil
}

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
	b.WriteString(fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message))
	return b.Bytes(), nil
}

func openLogFile(logPath, fileName string) (*os.File, error) {
	if err := os.MkdirAll(logPath, os.ModePerm); err != nil {
		return nil, err
	}
	timer := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s/%s-%s.log", logPath, timer, fileName)
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
}

// InitFile 把全局 logrus（gin 访问日志）落到按天切分的文件
func InitFile(logPath string, fileName string) {
	logrus.SetFormatter(&LogFormatter{})
	writer, err := openLogFile(logPath, fileName)
	if err != nil {
		logrus.Error(err)
		return
	}
	logrus.AddHook(&Hook{
		writer:   writer,
		logPath:  logPath,
		fileName: fileName,
		fileDate: time.Now().Format("2006-01-02"),
	})
}

// InitAppLogger 返回应用日志实例，同时输出到文件和 stderr
func InitAppLogger(logPath string, fileName string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&LogFormatter{})

	logFile, err := openLogFile(logPath, fileName)
	if err != nil {
		logrus.Error(err)
		logger.SetOutput(os.Stderr)
		return logger
	}
	logger.SetOutput(io.MultiWriter(logFile, os.Stderr))
	return logger
}

var Logger = InitAppLogger("./log", "drawchat")
