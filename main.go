package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	controllerConsumption "nutrimatch-go-worker/controllers/consumption"
	controllerInsights "nutrimatch-go-worker/controllers/insights"
	controllerProfile "nutrimatch-go-worker/controllers/profile"
	controllerRecommendation "nutrimatch-go-worker/controllers/recommendation"
	"nutrimatch-go-worker/database"
	"nutrimatch-go-worker/router"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/services/activity"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/services/consumption"
	"nutrimatch-go-worker/services/history"
	"nutrimatch-go-worker/services/learner"
	logLib "nutrimatch-go-worker/services/log"
	"nutrimatch-go-worker/services/profile"
	"nutrimatch-go-worker/services/rabbitmq"
	"nutrimatch-go-worker/services/recommendation"
	"nutrimatch-go-worker/services/report"
	"nutrimatch-go-worker/services/trackLog"
	"nutrimatch-go-worker/services/worker"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func main() {
	var envService utils.EnvService
	envService.InitEnv()

	var logService logLib.LogService
	logwr := logService.LoggerInit("main").WithField("task", "main")
	trackLog.LogTrackInit()
	logwr.Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		logwr.Error("worker shutdown")
		crashEmailAlert(logwr)
	}()

	if err := database.InitDatabasePool(); err != nil {
		logwr.WithField("error_message", err.Error()).Error("open database")
		return
	}
	db := database.Mysql
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logwr.WithField("error_message", err.Error()).Error("migrate database")
		return
	}
	if err := activity.Insert(db, "schedule.go.job.init", "nutrimatch-worker init", map[string]string{"status": "starting"}); err != nil {
		logwr.WithField("error_message", err.Error()).Warn("insert init activity log")
	}

	cfg, err := recommendation.LoadConfig()
	if err != nil {
		logwr.WithField("error_message", err.Error()).Error("load recommendation config")
		return
	}

	var foods catalog.FoodCatalog = catalog.NewGormCatalog(db)
	if err := database.InitRedis(ctx); err != nil {
		logwr.WithField("error_message", err.Error()).Warn("redis unavailable, catalog cache disabled")
	} else if database.Redis != nil {
		defer database.Redis.Close()
		foods = catalog.NewCachedCatalog(foods, database.Redis, database.RedisTTL(), logService.LoggerInit("catalog").WithField("task", "catalog"))
	}

	concurrentAmount := utils.EnvConfig.ConcurrentAmount
	profiles := profile.NewService(db, logService.LoggerInit("profile").WithField("task", "profile"))
	prefLearner := learner.New(db, logService.LoggerInit("learner").WithField("task", "learner"))
	insights := report.NewService(db, profiles, logService.LoggerInit("report").WithField("task", "report"))

	dispatcher := worker.NewDispatcher(
		prefLearner,
		func() worker.ProfileJob {
			return profile.NewInitService(db, profiles, logService.LoggerInit("profile-init").WithField("task", "profile-init"), concurrentAmount)
		},
		func() worker.ReportJob {
			return report.NewReportService(db, insights, logService.LoggerInit("report").WithField("task", "report"), concurrentAmount)
		},
		func(body structs.MismatchQueueResponse) error {
			return activity.Notify("/api/v1/workerCallback/mismatchQueue", body)
		},
		logService.LoggerInit("queue").WithField("task", "queue"),
	)

	conn := rabbitmq.NewConnection(utils.EnvConfig.RabbitMQ.Name, dispatcher.Queues(), logService.LoggerInit("rabbitmq").WithField("task", "rabbitmq"))
	if err := conn.Connect(); err != nil {
		logwr.WithField("error_message", err.Error()).Error("connect rabbitmq")
		return
	}
	if err := conn.BindQueue(); err != nil {
		logwr.WithField("error_message", err.Error()).Error("bind queues")
		return
	}
	deliveries, err := conn.Consume()
	if err != nil {
		logwr.WithField("error_message", err.Error()).Error("consume queues")
		return
	}
	go conn.HandleConsumedDeliveries(deliveries, func(_ *rabbitmq.Connection, q string, d <-chan amqp.Delivery) {
		dispatcher.Consume(ctx, q, d)
	})
	logwr.WithField("queues", dispatcher.Queues()).Info("waiting for messages")

	engine := recommendation.NewEngine(cfg, foods, profiles, history.NewService(db, logService.LoggerInit("history").WithField("task", "history")), nil, logService.LoggerInit("engine").WithField("task", "engine"))
	recommender := recommendation.NewService(db, engine, profiles, prefLearner, conn, logService.LoggerInit("recommendation").WithField("task", "recommendation"))
	tracker := consumption.NewService(db, foods, profiles, prefLearner, conn, logService.LoggerInit("consumption").WithField("task", "consumption"))

	apiLog := logService.LoggerInit("api").WithField("task", "api")
	route := router.Router(router.Controllers{
		Recommendation: controllerRecommendation.NewController(recommender, apiLog),
		Consumption:    controllerConsumption.NewController(tracker, apiLog),
		Insights:       controllerInsights.NewController(insights, apiLog),
		Profile:        controllerProfile.NewController(profiles, apiLog),
	})
	server := &http.Server{Addr: fmt.Sprintf(":%d", utils.EnvConfig.Router.Port), Handler: route}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logwr.WithField("error_message", err.Error()).Error("http server")
			stop()
		}
	}()
	logwr.WithField("port", utils.EnvConfig.Router.Port).Info("http server started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logwr.WithField("error_message", err.Error()).Error("http server shutdown")
	}
}

func crashEmailAlert(logwr *logrus.Entry) {
	api := utils.EnvConfig.Email.APIUrl
	if api == "" {
		return
	}
	if _, err := services.HttpRequest(http.MethodPost, api, nil, map[string]string{"service": "nutrimatch-worker", "event": "shutdown"}); err != nil {
		logwr.WithField("error_message", err.Error()).Error("crash email alert")
	}
}
