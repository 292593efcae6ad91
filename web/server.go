package web

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"flatfin/db/db"
	"flatfin/db/mem"
	"flatfin/db/pg"
	"flatfin/mq/gcppubsub"
	"flatfin/mq/goch"
	"flatfin/mq/mq"
	"flatfin/mq/rabbit"
	"flatfin/notify"
)

type ServiceConfig struct {
	IsDev  bool
	Port   string
	MqMode mq.Mode
}

// Service bundles the store and queue every handler works against.
type Service struct {
	store db.LedgerDBWrapper
	queue mq.LedgerMessageQueueWrapper
}

func NewService(store db.LedgerDBWrapper, queue mq.LedgerMessageQueueWrapper) *Service {
	return &Service{store: store, queue: queue}
}

// NewRouter builds the gin engine with all middlewares and routes registered.
func NewRouter(s *Service) *gin.Engine {
	r := gin.New()
	setupMiddlewares(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/users", s.createUser)
		api.GET("/users/:id", s.getUser)
		api.PUT("/users/:id", s.updateUser)
		api.GET("/users/:id/export", s.exportUser)
		api.GET("/users/:id/events", s.userEvents)

		api.POST("/flats", s.createFlat)
		api.GET("/flats/:id", s.getFlat)
		api.PUT("/flats/:id/fixed-costs", s.updateFixedCosts)
		api.POST("/flats/join", s.joinFlat)
		api.POST("/flats/:id/members", s.addMember)
		api.DELETE("/flats/:id/members/:member", s.removeMember)
		api.DELETE("/flats/:id", s.deleteFlat)
		api.GET("/flats/:id/balances", s.flatBalances)
		api.GET("/flats/:id/settlements", s.flatSettlements)
		api.GET("/flats/:id/events", s.flatEvents)

		api.POST("/expenses", s.createExpense)
		api.GET("/expenses", s.listExpenses)
		api.GET("/expenses/:id", s.getExpense)
		api.PUT("/expenses/:id", s.updateExpense)
		api.DELETE("/expenses/:id", s.deleteExpense)

		api.POST("/budgets", s.createBudget)
		api.GET("/budgets", s.listBudgets)
		api.GET("/budgets/:id", s.getBudget)
		api.GET("/budgets/:id/status", s.budgetStatus)
		api.DELETE("/budgets/:id", s.deleteBudget)

		api.POST("/reminders", s.createReminder)
		api.GET("/reminders/:id", s.getReminder)
		api.GET("/reminders", s.upcomingReminders)
		api.POST("/reminders/:id/snooze", s.snoozeReminder)
		api.POST("/reminders/:id/pay", s.payReminder)
		api.DELETE("/reminders/:id", s.deleteReminder)

		api.GET("/reports", s.getReport)
		api.GET("/reports/export", s.exportReport)
	}

	return r
}

// Serve wires the store and queue for the configured mode and blocks serving
// HTTP. The in-memory store serves dev mode; a DATABASE_URL switches to
// PostgreSQL.
func Serve(cfg ServiceConfig) {
	if !cfg.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}

	var store db.LedgerDBWrapper
	if !cfg.IsDev || os.Getenv("DATABASE_URL") != "" {
		gormDB, err := pg.InitPostgresGORM(pg.CreateDSN())
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pg.CloseGORM(gormDB)
		store = pg.NewGORMLedgerDBWrapper(gormDB)
	} else {
		log.Println("Using in-memory store")
		store = mem.NewInMemoryLedgerDBWrapper()
	}

	queue := newQueueWrapper(cfg.MqMode)
	service := NewService(store, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminder scanner: wake every minute, announce reminders due within two
	// days.
	scanner := notify.NewScanner(store, queue.GetReminderDueMessageQueue(), time.Minute, 48*time.Hour)
	go scanner.Run(ctx)

	r := NewRouter(service)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run web server: %v", err)
	}
}

// Event publishing is best-effort: a queue hiccup must not fail the mutation
// that already committed.
func logPublishError(stream string, action mq.Action, err error) {
	log.Printf("Failed to publish %s %s event: %v", stream, action, err)
}

func newQueueWrapper(mode mq.Mode) mq.LedgerMessageQueueWrapper {
	switch mode {
	case mq.ModeRabbitMQ:
		conn := rabbit.NewRabbitConnection(rabbit.CreateAmqpURL())
		wrapper, err := rabbit.NewRabbitLedgerMessageQueueWrapper(conn)
		if err != nil {
			log.Fatalf("Failed to create RabbitMQ wrapper: %v", err)
		}
		return wrapper
	case mq.ModeGCPPubSub:
		wrapper, err := gcppubsub.NewGCPLedgerMessageQueueWrapper(context.Background(), gcppubsub.GetGCPProjectID())
		if err != nil {
			log.Fatalf("Failed to create GCP Pub/Sub wrapper: %v", err)
		}
		return wrapper
	default:
		return goch.NewGoChanLedgerMessageQueueWrapper()
	}
}
