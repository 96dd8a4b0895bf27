package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/eureka-edu/studybuddy/config"
	"github.com/eureka-edu/studybuddy/internal/api/handlers"
	"github.com/eureka-edu/studybuddy/internal/api/middleware"
	"github.com/eureka-edu/studybuddy/internal/api/routes"
	"github.com/eureka-edu/studybuddy/internal/cache"
	"github.com/eureka-edu/studybuddy/internal/ingest"
	"github.com/eureka-edu/studybuddy/internal/logger"
	"github.com/eureka-edu/studybuddy/internal/providers/llm"
	"github.com/eureka-edu/studybuddy/internal/providers/stt"
	"github.com/eureka-edu/studybuddy/internal/providers/tts"
	mongorepo "github.com/eureka-edu/studybuddy/internal/repositories/mongo"
	pgrepo "github.com/eureka-edu/studybuddy/internal/repositories/postgres"
	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongodb init failed")
	}
	log.Info("mongodb connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongodb index setup failed")
	}

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgresql init failed")
	}
	log.Info("postgresql connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	log.Info("redis connected")

	// Completion provider
	var provider llm.Provider
	var embedder services.Embedder
	switch os.Getenv("LLM_PROVIDER") {
	case "vertex":
		p, err := llm.NewVertexGemini(ctx,
			os.Getenv("VERTEX_PROJECT_ID"),
			os.Getenv("VERTEX_LOCATION"),
			envOr("VERTEX_MODEL", "gemini-1.5-flash"),
		)
		if err != nil {
			log.WithError(err).Fatal("vertex init failed")
		}
		provider = p
		// Embeddings still come from a local model when one is reachable.
		if o, err := llm.NewOllama(envOr("OLLAMA_MODEL", "llama3")); err == nil {
			embedder = o
		} else {
			log.WithError(err).Warn("ollama unreachable, turns stored without embeddings")
		}
	default:
		o, err := llm.NewOllama(envOr("OLLAMA_MODEL", "llama3"))
		if err != nil {
			log.WithError(err).Fatal("ollama init failed")
		}
		provider = o
		embedder = o
	}
	defer provider.Close()

	// Transcription: cloud primary, local sidecar fallback
	var sttPrimary stt.Provider
	if p, err := stt.NewGoogleSpeech(ctx); err != nil {
		log.WithError(err).Warn("google speech unavailable, sidecar only")
	} else {
		sttPrimary = p
		defer p.Close()
	}
	sttFallback := stt.NewSidecar(os.Getenv("STT_SIDECAR_URL"))

	// Synthesis: cloud synthesizer for native mode, sidecar engine for classic
	var synth tts.Synthesizer
	if t, err := tts.NewGoogleTTS(ctx); err != nil {
		log.WithError(err).Warn("google tts unavailable")
	} else {
		synth = t
	}
	var engine tts.Engine
	if url := os.Getenv("TTS_SIDECAR_URL"); url != "" {
		engine = tts.NewSidecarEngine(url)
	}

	// Raw upload archive (optional)
	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		u, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.WithError(err).Warn("gcs unavailable, uploads will not be archived")
		} else {
			uploader = u
			defer u.Close()
		}
	}

	// Repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	classroomRepo := pgrepo.NewClassroomRepo(config.PostgresDB)
	documentRepo := pgrepo.NewDocumentRepo(config.PostgresDB)
	conversationRepo := pgrepo.NewConversationRepo(config.PostgresDB)
	sessionRepo := mongorepo.NewSessionRepo(config.MongoDatabase())
	bufferRepo := mongorepo.NewBufferRepo(config.MongoDatabase())

	// Services
	redisCache := cache.NewRedisCache(config.RedisClient)
	userSvc := services.NewUserService(userRepo)
	docSvc := services.NewDocumentService(documentRepo, ingest.NewRegistry(), uploader, redisCache, log)
	classroomSvc := services.NewClassroomService(classroomRepo, userRepo, docSvc)
	convoSvc := services.NewConversationService(conversationRepo, embedder, log)
	sessionSvc := services.NewSessionService(sessionRepo)
	bufferSvc := services.NewBufferService(bufferRepo, log)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(userSvc),
		User:         handlers.NewUserHandler(userSvc),
		Classroom:    handlers.NewClassroomHandler(classroomSvc),
		Document:     handlers.NewDocumentHandler(docSvc),
		Session:      handlers.NewSessionHandler(sessionSvc, bufferSvc),
		Conversation: handlers.NewConversationHandler(convoSvc),
		ChatWS:       handlers.NewChatWSHandler(sessionSvc, convoSvc, docSvc, provider, config.RedisClient, log),
		VoiceWS: handlers.NewVoiceWSHandler(
			sessionSvc, convoSvc, docSvc, bufferSvc,
			provider, sttPrimary, sttFallback, synth, engine,
			config.RedisClient, log,
		),
	})

	port := envOr("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
