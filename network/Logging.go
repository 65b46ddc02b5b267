package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/toolkits/pkg/logger"
)

type CSVLogger interface {
	Log(s interface{})
	Close()
}

type StructEncoder interface {
	GetHeaders() []string
	GetValues(s interface{}) []string
}

var _ CSVLogger = new(CSVStructLogger)

// CSVStructLogger writes one csv row per logged value from a background
// goroutine. Every row ends with the time it was logged.
type CSVStructLogger struct {
	*csv.Writer
	encoder      StructEncoder
	consumerChan chan []string
	done         chan struct{}
}

type MessageEncoder struct{}

func (MessageEncoder) GetHeaders() []string {
	return []string{"From", "To", "Type", "Size"}
}

func (MessageEncoder) GetValues(s interface{}) []string {
	msg := s.(Message)
	return []string{fmt.Sprint(msg.GetFrom()), fmt.Sprint(msg.GetTo()), msg.GetType(), fmt.Sprint(msg.GetSize())}
}

func NewCSVStructLogger(writer io.Writer, encoder StructEncoder) *CSVStructLogger {
	res := &CSVStructLogger{
		Writer:       csv.NewWriter(writer),
		encoder:      encoder,
		consumerChan: make(chan []string, 30),
		done:         make(chan struct{}),
	}
	go func() {
		defer close(res.done)
		defer res.Flush()
		if err := res.Write(append(encoder.GetHeaders(), "Time")); err != nil {
			logger.Errorf("writing trace header: %v", err)
		}
		for data := range res.consumerChan {
			if err := res.Write(data); err != nil {
				logger.Errorf("writing trace row %v: %v", data, err)
			}
		}
	}()
	return res
}

func (l *CSVStructLogger) Log(s interface{}) {
	l.consumerChan <- append(l.encoder.GetValues(s), time.Now().Format(time.StampMilli))
}

// Close flushes every logged row before returning.
func (l *CSVStructLogger) Close() {
	close(l.consumerChan)
	<-l.done
}
