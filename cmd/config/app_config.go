package config

import (
	"context"
	"fmt"
	"freshkeep-backend/internal/api/handlers"
	"freshkeep-backend/internal/api/routes"
	"freshkeep-backend/internal/middleware"
	"freshkeep-backend/internal/utils"
	"freshkeep-backend/internal/utils/mailing"
	"freshkeep-backend/pkg/assistant"
	"freshkeep-backend/pkg/food"
	"freshkeep-backend/pkg/notification"
	"freshkeep-backend/pkg/ratelimit"
	"freshkeep-backend/pkg/settings"
	"io"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Server bundles the HTTP app with the background workers that keep alert
// schedules and in-memory limiters current.
type Server struct {
	App *fiber.App

	coordinator *notification.Coordinator
	dispatcher  *notification.Dispatcher
	replanner   *notification.Replanner
	sweepers    []ratelimit.Sweeper
	clock       func() time.Time
	logFile     io.Closer
}

// NewApp wires repositories, services and handlers. rdb may be nil.
func NewApp(db *gorm.DB, rdb *redis.Client) (*Server, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         12 * 1024 * 1024,
	})
	validator := utils.Validate

	loc := utils.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// setting up logging
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   loc.String(),
		Output:     file,
	}))

	// limiters
	connectionLimiter := ratelimit.NewConnectionLimiter(
		utils.GetConfigInt("RATE_LIMIT_MAX", ratelimit.DefaultConnectionMax),
		utils.GetConfigSeconds("RATE_LIMIT_WINDOW_SECONDS", ratelimit.DefaultConnectionWindow),
	)
	limits := ratelimit.Limits{
		Scans:   utils.GetConfigInt("DAILY_SCAN_LIMIT", ratelimit.DefaultScanLimit),
		Recipes: utils.GetConfigInt("DAILY_RECIPE_LIMIT", ratelimit.DefaultRecipeLimit),
	}
	sweepers := []ratelimit.Sweeper{connectionLimiter}

	var quota ratelimit.DailyQuota
	if rdb != nil {
		quota = ratelimit.NewRedisQuota(rdb, limits, loc)
		log.Infow("daily quotas stored in redis")
	} else {
		memoryQuota := ratelimit.NewMemoryQuota(limits, loc)
		sweepers = append(sweepers, memoryQuota)
		quota = memoryQuota
		log.Infow("daily quotas kept in memory, they reset on restart")
	}

	// Repository
	foodRepository := food.NewFoodRepository(db)
	settingsRepository := settings.NewSettingsRepository(db)

	// The planner reads settings through a service without a trigger; the
	// one handed to handlers triggers replans through the coordinator.
	preferenceReader := settings.NewSettingsService(settingsRepository, nil)
	plannerConfig := notification.DefaultPlannerConfig()
	plannerConfig.DigestHour = utils.GetConfigInt("DIGEST_HOUR", plannerConfig.DigestHour)
	plannerConfig.DigestMinute = utils.GetConfigInt("DIGEST_MINUTE", plannerConfig.DigestMinute)
	plannerConfig.Now = clock
	alertRepository := notification.NewAlertRepository(db, preferenceReader, plannerConfig.DigestHour, plannerConfig.DigestMinute, clock)

	planner, err := notification.NewPlanner(foodRepository, preferenceReader, alertRepository, plannerConfig)
	if err != nil {
		return nil, fmt.Errorf("configure planner: %w", err)
	}
	coordinator := notification.NewCoordinator(planner, 0)

	// Service
	foodService := food.NewFoodService(foodRepository, coordinator, clock)
	settingsService := settings.NewSettingsService(settingsRepository, coordinator)
	notificationService := notification.NewNotificationService(coordinator, planner, alertRepository)
	gateway := assistant.NewGateway(quota, assistant.NewOpenAIClient(assistant.ClientConfig{
		APIKey:      utils.GetConfig("OPENAI_API_KEY"),
		BaseURL:     utils.GetConfig("OPENAI_BASE_URL"),
		Model:       utils.GetConfig("OPENAI_MODEL"),
		VisionModel: utils.GetConfig("OPENAI_VISION_MODEL"),
		Timeout:     utils.GetConfigSeconds("AI_TIMEOUT_SECONDS", assistant.DefaultTimeout),
		Attempts:    uint(utils.GetConfigInt("AI_RETRY_ATTEMPTS", 0)),
	}), clock)

	// workers
	sender := notification.NewMailSender(mailing.NewMailer(mailing.LoadMailConfig()), settingsService)
	dispatcher := notification.NewDispatcher(alertRepository, sender, clock)
	replanner := notification.NewReplanner(
		coordinator,
		utils.GetConfigInt("REPLAN_HOUR", 0),
		clock,
		foodRepository,
		settingsRepository,
	)

	// Handler
	assistantHandler := handlers.NewAssistantHandler(gateway, validator)
	foodHandler := handlers.NewFoodHandler(foodService, validator)
	settingsHandler := handlers.NewSettingsHandler(settingsService, validator)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		AssistantHandler:    assistantHandler,
		FoodHandler:         foodHandler,
		SettingsHandler:     settingsHandler,
		NotificationHandler: notificationHandler,
		Middleware:          middleware.NewMiddleware(connectionLimiter, clock),
	}
	routesConfig.Setup()

	return &Server{
		App:         app,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		replanner:   replanner,
		sweepers:    sweepers,
		clock:       clock,
		logFile:     file,
	}, nil
}

// StartWorkers launches the background loops. They stop when ctx is done.
func (s *Server) StartWorkers(ctx context.Context) {
	ratelimit.StartSweeper(ctx, utils.GetConfigSeconds("SWEEP_INTERVAL_SECONDS", 5*time.Minute), s.clock, s.sweepers...)
	s.dispatcher.Start(ctx, utils.GetConfigSeconds("DISPATCH_INTERVAL_SECONDS", time.Minute))
	s.replanner.Start(ctx)
}

// Close waits for in-flight recomputes before releasing the log file.
func (s *Server) Close() error {
	s.coordinator.Wait()
	return s.logFile.Close()
}
