package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for request counters and the rolling error log.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// errorLogCap bounds the error log list.
const errorLogCap = 100

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// Service records traffic counters in Redis and reports service health.
// A nil Rdb turns every recording call into a no-op.
type Service struct {
	Rdb *redis.Client
	DB  DBPinger
	// Upstreams are external HTTP dependencies probed on Collect, by name.
	Upstreams map[string]string
	HTTP      *http.Client
}

type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB  int `json:"allocMb"`
	HeapInMB int `json:"heapInUseMb"`
}

type TrafficInfo struct {
	TotalRequests   int          `json:"totalRequests"`
	SuccessCount    int          `json:"successCount"`
	FailedCount     int          `json:"failedCount"`
	SuccessRate     string       `json:"successRate"`
	AvgResponseTime string       `json:"avgResponseTime"`
	LastRequest     *LastRequest `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// LastRequest is the most recent request seen by the health marker.
type LastRequest struct {
	Time   time.Time `json:"time"`
	IP     string    `json:"ip"`
	Path   string    `json:"path"`
	Method string    `json:"method"`
}

// ErrorEntry is one unexpected failure pushed to the error log.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	TraceID string    `json:"trace_id"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

// MarkRequest counts an incoming request and remembers it as the latest.
func (s *Service) MarkRequest(ctx context.Context, last LastRequest) {
	if s == nil || s.Rdb == nil {
		return
	}
	b, _ := json.Marshal(last)
	pipe := s.Rdb.Pipeline()
	pipe.Set(ctx, KeyLastReq, b, 0)
	pipe.Incr(ctx, KeyReqTotal)
	_, _ = pipe.Exec(ctx)
}

// MarkResponse records latency and counts 5xx responses as failures.
func (s *Service) MarkResponse(ctx context.Context, elapsed time.Duration, status int) {
	if s == nil || s.Rdb == nil {
		return
	}
	pipe := s.Rdb.Pipeline()
	pipe.Incr(ctx, KeyResCount)
	pipe.IncrByFloat(ctx, KeyResTime, float64(elapsed.Milliseconds()))
	if status >= 500 {
		pipe.Incr(ctx, KeyReqErrors)
	}
	_, _ = pipe.Exec(ctx)
}

// LogError pushes e to the front of the error log, keeping the newest entries.
func (s *Service) LogError(ctx context.Context, e ErrorEntry) error {
	if s == nil || s.Rdb == nil {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.Rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentErrors returns up to n newest error log entries.
func (s *Service) RecentErrors(ctx context.Context, n int64) ([]ErrorEntry, error) {
	out := []ErrorEntry{}
	if s == nil || s.Rdb == nil {
		return out, nil
	}
	raw, err := s.Rdb.LRange(ctx, KeyErrorLog, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	for _, r := range raw {
		var e ErrorEntry
		if json.Unmarshal([]byte(r), &e) == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// Reset clears all counters and the error log and restarts the uptime clock.
func (s *Service) Reset(ctx context.Context) error {
	if s == nil || s.Rdb == nil {
		return nil
	}
	keys := []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog}
	if err := s.Rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return s.Rdb.Set(ctx, KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err()
}

// Collect gathers the health report from Redis, the database and upstream pings.
func (s *Service) Collect(ctx context.Context) Report {
	report := Report{Dependencies: make(map[string]DepStatus)}

	dbStatus := DepStatus{Status: "disconnected"}
	if s.DB != nil {
		start := time.Now()
		if err := s.DB.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbStatus = DepStatus{Status: "connected", PingMs: &ms}
		} else {
			dbStatus.Status = "error"
		}
	}
	report.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: "disconnected"}
	traffic := TrafficInfo{AvgResponseTime: "0", SuccessRate: "100"}
	startMs := time.Now().UnixMilli()
	if s.Rdb != nil {
		start := time.Now()
		if err := s.Rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisStatus = DepStatus{Status: "connected", PingMs: &ms}
			startMs = s.readTraffic(ctx, &traffic, startMs)
		} else {
			redisStatus.Status = "error"
		}
	}
	report.Dependencies["redis"] = redisStatus
	report.Traffic = traffic

	for name, url := range s.Upstreams {
		st := DepStatus{Status: "unreachable"}
		if ms := s.ping(url); ms != nil {
			st = DepStatus{Status: "reachable", PingMs: ms}
		}
		report.Dependencies[name] = st
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapInMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	if dbStatus.Status == "connected" && redisStatus.Status == "connected" {
		report.Status = "ok"
	} else {
		report.Status = "issue"
	}
	return report
}

func (s *Service) readTraffic(ctx context.Context, t *TrafficInfo, startMs int64) int64 {
	vals, err := s.Rdb.MGet(ctx, KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq).Result()
	if err != nil {
		return startMs
	}
	str := func(i int) string {
		v, _ := vals[i].(string)
		return v
	}

	if started, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = started
	} else {
		s.Rdb.Set(ctx, KeyStartTime, startMs, 0)
	}

	t.TotalRequests, _ = strconv.Atoi(str(0))
	t.FailedCount, _ = strconv.Atoi(str(1))
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		t.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" {
		var lr LastRequest
		if json.Unmarshal([]byte(last), &lr) == nil {
			t.LastRequest = &lr
		}
	}
	return startMs
}

func (s *Service) ping(url string) *int64 {
	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	ms := time.Since(start).Milliseconds()
	return &ms
}
