package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"babble-service/configs"
	"babble-service/internal/babble"
	"babble-service/internal/cache"
	"babble-service/internal/comment"
	"babble-service/internal/feed"
	"babble-service/internal/follow"
	"babble-service/internal/like"
	"babble-service/internal/media"
	"babble-service/internal/migrate"
	"babble-service/internal/notify"
	"babble-service/internal/rebabble"
	"babble-service/internal/stt"
	"babble-service/internal/tag"
	pkgdb "babble-service/pkg/db"
	pkgkafka "babble-service/pkg/kafka"
	"babble-service/pkg/redisx"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func initOTEL(ctx context.Context, log *zap.Logger) func(context.Context) error {
	endpoint := getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318")
	exp, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Fatal("otel exporter", zap.Error(err))
	}

	svcName := getenv("OTEL_SERVICE_NAME", "babble-service")
	env := getenv("ENV", "local")

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(svcName),
			attribute.String("deployment.environment", env),
		),
	)

	ratio := 1.0
	if s := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f <= 1 {
			ratio = f
		}
	}

	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	)
	return tp.Shutdown
}

// marks joins the like and rebabble edges behind the single overlay
// interface the feed assembler and babble service consume.
type marks struct {
	likes     like.Repository
	rebabbles rebabble.Repository
}

func (m marks) LikedSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	return m.likes.LikedSet(ctx, userID, ids)
}

func (m marks) RebabbledSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	return m.rebabbles.RebabbledSet(ctx, userID, ids)
}

func main() {
	_ = godotenv.Load()

	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	cfg := configs.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := initOTEL(ctx, log)
	defer func() {
		c, cc := context.WithTimeout(context.Background(), 5*time.Second)
		defer cc()
		_ = shutdownTracing(c)
	}()

	gdb := pkgdb.Open(cfg)
	if err := migrate.Run(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb := redisx.Open(cfg)
	indexCache := feed.NewIndexCache(cache.NewRedis(rdb, "feed", cache.DefaultTTL), log)
	contentCache := babble.NewContentCache(cache.NewRedis(rdb, "babble", cache.DefaultTTL), log)

	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds: credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
	})
	if err != nil {
		log.Fatal("minio client", zap.Error(err))
	}
	audio := media.NewStore(mc, cfg.MinioBucket)
	if err := audio.EnsureBucket(ctx); err != nil {
		log.Warn("minio bucket", zap.Error(err))
	}

	producer := pkgkafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() { _ = producer.Close() }()
	events := notify.NewPublisher(producer, log)

	babbleRepo := babble.NewRepository(gdb)
	tagRepo := tag.NewRepository(gdb)
	likeRepo := like.NewRepository(gdb)
	rebabbleRepo := rebabble.NewRepository(gdb)
	commentRepo := comment.NewRepository(gdb)
	followRepo := follow.NewRepository(gdb)

	mk := marks{likes: likeRepo, rebabbles: rebabbleRepo}
	counters := babble.NewCounters(babbleRepo, contentCache)
	fanout := feed.NewFanout(indexCache, contentCache, followRepo, log)
	assembler := feed.NewAssembler(indexCache, contentCache, babbleRepo, followRepo, mk, log)

	keywords := stt.NewClient(cfg.STTServiceURL)
	babbleSvc := babble.NewService(babbleRepo, tagRepo, keywords, contentCache, fanout, mk, events, log)
	likeSvc := like.NewService(likeRepo, babbleRepo, counters, indexCache, events)
	rebabbleSvc := rebabble.NewService(rebabbleRepo, babbleRepo, counters, indexCache, events)
	commentSvc := comment.NewService(commentRepo, babbleRepo, counters, events)
	followSvc := follow.NewService(followRepo, indexCache, events)

	router := http.NewServeMux()
	feed.NewHandler(router, assembler)
	babble.NewHandler(router, babbleSvc, audio)
	like.NewHandler(router, likeSvc, babbleSvc)
	rebabble.NewHandler(router, rebabbleSvc)
	comment.NewHandler(router, commentSvc, audio)
	follow.NewHandler(router, followSvc)

	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Info("babble-service listening", zap.String("addr", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
	cancel()
}
