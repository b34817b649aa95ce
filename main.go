package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/config"
	"lg/calorie-tracker-api/internal/predict"
	"lg/calorie-tracker-api/internal/store/driver"
)

func main() {
	log.SetPrefix("lg/calorie-tracker-api: ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := driver.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	var predictor *predict.Normalizer
	if cfg.OpenAIKey != "" {
		ai := predict.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		predictor = predict.NewNormalizer(ai, cfg.PredictTimeout)
	} else {
		log.Println("OPENAI_API_KEY not set, predictions will return 503")
	}

	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}
	newHandler(st, predictor).registerRoutes(router)

	log.Printf("listening on %s (%s store)", cfg.Addr(), cfg.DBDriver)
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
