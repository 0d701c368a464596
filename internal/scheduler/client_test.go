package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestScheduleLeadFollowup_EnqueuesTask(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr(), queue: "eventcraft"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.ScheduleLeadFollowup(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := srv.Keys()
	if len(keys) == 0 {
		t.Fatal("expected asynq keys in redis after enqueue")
	}
}

func TestScheduleLeadFollowup_NilClientIsNoop(t *testing.T) {
	var client *Client
	if err := client.ScheduleLeadFollowup(context.Background(), uuid.New()); err != nil {
		t.Fatalf("nil client must be a no-op, got %v", err)
	}
}

func TestRedisClientOpt_ParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Errorf("unexpected options: %+v", opt)
	}

	if _, err := redisClientOpt("not a url", false); err == nil {
		t.Error("expected error for malformed url")
	}
}
