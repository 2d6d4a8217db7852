package printer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisconnectConcurrentWithPublish(t *testing.T) {
	c := NewClient(Options{Serial: "S1"}, nil)

	// 指令路径与断连并发执行：断连只能让指令返回错误，不能让它崩溃
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.ErrorIs(t, c.StopPrint(), ErrNotConnected)
				_ = c.Connected()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Disconnect()
			}
		}()
	}
	wg.Wait()
}

func TestDisconnectConcurrentWithReport(t *testing.T) {
	c := NewClient(Options{Serial: "S1"}, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			c.handleReport([]byte(`{"print": {"mc_percent": 50}}`))
			_ = c.Report()
		}
	}()
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			c.Disconnect()
		}
	}()
	wg.Wait()

	assert.Equal(t, 50, c.Report().Percent)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	c := NewClient(Options{Serial: "S1"}, nil)
	c.Disconnect()
	c.Disconnect()
	assert.False(t, c.Connected())
}
