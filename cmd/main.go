package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"cv-checker/infrastructure"
	"cv-checker/interfaces"
	"cv-checker/usecase"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	db, err := infrastructure.NewMySQLConnection(log)
	if err != nil {
		log.WithError(err).Fatal("database setup failed")
	}

	rmq, err := infrastructure.NewRabbitMQ(log)
	if err != nil {
		log.WithError(err).Fatal("RabbitMQ setup failed")
	}
	defer rmq.Close()

	llm, err := infrastructure.NewOpenAIClient()
	if err != nil {
		log.WithError(err).Fatal("LLM client setup failed")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	files, err := infrastructure.NewLocalUploadStore(uploadDir)
	if err != nil {
		log.WithError(err).Fatal("upload store setup failed")
	}

	processes := infrastructure.NewProcessStore(db)
	parameters := infrastructure.NewParameterStore(db)
	requests := infrastructure.NewRequestStore(db)
	users := infrastructure.NewUserStore(db)

	admission := usecase.NewAdmissionController(usecase.DefaultMaxConcurrent)
	extractor := infrastructure.NewTextExtractor(files)

	scoring := usecase.NewScoringAdapter(processes, requests, llm, admission, log)
	orchestrator := usecase.NewOrchestrator(processes, parameters, users, admission, extractor, rmq, log)
	intake := usecase.NewIntake(parameters, processes, users, files, log)
	projector := usecase.NewProjector(processes)

	// Worker: scoring jobs run detached from the requests that queue
	// them, in this same binary.
	if err := rmq.Consume(scoring.Run); err != nil {
		log.WithError(err).Fatal("worker setup failed")
	}

	router := gin.Default()
	interfaces.NewHTTPHandler(router, files, processes, intake, orchestrator, projector, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server starting")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
