package notifier

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// LogNotifier пишет события в лог, когда внешний получатель не настроен
type LogNotifier struct {
	log Logger
}

// NewLogNotifier создает новый экземпляр лог нотификатора
func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.log.Info("Notify: %s booking=%d slot=%s %s subject=%s:%d",
		event.Outcome, event.BookingID, event.SlotDay, event.SlotStart, event.SubjectKind, event.SubjectID)
	return nil
}
