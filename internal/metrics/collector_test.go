package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.callsTotal)
	assert.NotNil(t, collector.callDuration)
	assert.NotNil(t, collector.tokensUsed)
	assert.NotNil(t, collector.costTotal)
}

func TestCollector_RecordCall(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCall("openai:gpt-4", "success", 500*time.Millisecond, 100, 50, 0.01)

	assert.Greater(t, testutil.CollectAndCount(collector.callsTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.callDuration), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.tokensUsed), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.costTotal), 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			collector.RecordCall("openai:gpt-4", "success", 100*time.Millisecond, 10, 5, 0.001)
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Greater(t, testutil.CollectAndCount(collector.callsTotal), 0)
}
