package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/internal/service"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

// 对比未读指纹读取：直查 DB vs redis 缓存命中
func main() {
	ctx := context.Background()

	N := 5000 // users
	if s := os.Getenv("N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			N = n
		}
	}
	READS := 20000
	if s := os.Getenv("READS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			READS = n
		}
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	db := must(gorm.Open(sqlite.Open(":memory:"), &gorm.Config{}))
	mustDo(db.AutoMigrate(&model.User{}, &model.Notification{}))

	fmt.Println("Seeding users and notifications...")
	users := make([]model.User, N)
	for i := range users {
		users[i] = model.User{Email: fmt.Sprintf("u%06d@example.com", i), Password: "p"}
	}
	mustDo(db.CreateInBatches(&users, 1000).Error)

	notes := make([]model.Notification, 0, N*8)
	for i := range users {
		for j := 0; j < 8; j++ {
			notes = append(notes, model.Notification{
				UserID:    users[i].ID,
				Title:     "standup",
				Message:   fmt.Sprintf("note %d for user %d", j, i),
				Role:      model.RoleInvite,
				Dismissed: j%3 == 0,
			})
		}
	}
	mustDo(db.CreateInBatches(&notes, 1000).Error)

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNotificationRepository(db)

	cache := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer cache.Close()
	if err := cache.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "redis unreachable at %s: %v\n", redisAddr, err)
		os.Exit(1)
	}

	uncached := service.NewNotificationService(userRepo, noteRepo, nil, 25, 0)
	cached := service.NewNotificationService(userRepo, noteRepo, cache, 25, 10*time.Minute)

	run := func(name string, svc service.NotificationService) {
		lats := make([]time.Duration, 0, READS)
		start := time.Now()
		for i := 0; i < READS; i++ {
			email := users[rand.Intn(N)].Email
			t0 := time.Now()
			if _, err := svc.UnreadFingerprint(ctx, email); err != nil {
				panic(err)
			}
			lats = append(lats, time.Since(t0))
		}
		total := time.Since(start)
		sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })
		p := func(q float64) time.Duration { return lats[int(float64(len(lats)-1)*q)] }
		fmt.Printf("%-10s reads=%d total=%v qps=%.0f p50=%v p95=%v p99=%v\n",
			name, READS, total, float64(READS)/total.Seconds(), p(0.50), p(0.95), p(0.99))
	}

	run("no-cache", uncached)
	run("cached", cached)
}
