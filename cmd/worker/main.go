package main

import (
	"log"
	"sync"

	"imagegen-backend/cmd"
	"imagegen-backend/internal/database"
	"imagegen-backend/internal/generation"
	"imagegen-backend/internal/messaging"

	"github.com/caarlos0/env/v11"
)

type WorkerConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,notEmpty,required"`
	RabbitMQURL   string `env:"RABBITMQ_URL,notEmpty,required"`
	GenerationURL string `env:"GENERATION_BACKEND_URL,notEmpty,required"`
	Concurrency   int    `env:"CONCURRENCY" envDefault:"1"`
}

func main() {
	log.Println("Starting generation worker...")

	cmd.LoadEnvFile()

	var cfg WorkerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer receiver.Close()

	client := generation.NewClient(cfg.GenerationURL)
	worker := messaging.NewWorker(db, client, receiver)

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	log.Printf("Running %d worker instances", concurrency)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			worker.Run()
		}()
	}
	wg.Wait()

	log.Println("Worker stopped.")
}
