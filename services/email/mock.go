package emailsvc

import (
	"log"
	"os"
	"sync"

	"github.com/trezcool/yuva/core"
	logsvc "github.com/trezcool/yuva/services/logger"
)

var parseTemplatesOnce sync.Once

// ConsoleServiceMock renders messages synchronously, without output, and keeps them for assertions.
type ConsoleServiceMock struct {
	consoleService

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleServiceMock)(nil)

func NewConsoleServiceMock() *ConsoleServiceMock {
	conf := core.NewTestConfig()
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "EMAIL : ", log.LstdFlags))
	parseTemplatesOnce.Do(func() { core.ParseEmailTemplates(conf, logger) })

	return &ConsoleServiceMock{
		consoleService: consoleService{
			defaultFromEmail: conf.DefaultFromEmail(),
			subjPrefix:       "[" + conf.AppName + "] ",
			logger:           logger,
			disableOutput:    true,
		},
	}
}

func (svc *ConsoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		// run synchronously
		if svc.sendMessage(msg) {
			svc.mu.Lock()
			svc.sent = append(svc.sent, *msg)
			svc.mu.Unlock()
		}
	}
}

// Messages returns a copy of the messages sent so far.
func (svc *ConsoleServiceMock) Messages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func (svc *ConsoleServiceMock) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
