package weather

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher は天気データをバックグラウンドで定期再取得し、
// 最新の取得結果を保持する
type Refresher struct {
	client   *Client
	interval time.Duration
	panel    *Panel

	// 制御用
	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.RWMutex

	// 最新の取得結果
	latest    *OneCall
	panelPNG  []byte
	fetchedAt time.Time
}

// NewRefresher は新しいRefresherを作成する
func NewRefresher(client *Client, interval time.Duration) *Refresher {
	return &Refresher{
		client:   client,
		interval: interval,
		panel:    NewPanel(),
		stopCh:   make(chan struct{}),
	}
}

// Start はバックグラウンドの再取得ループを開始する
// 起動直後に1回取得し、以降は設定間隔ごとに再取得する
func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.refreshLoop(ctx)

	log.Printf("天気データの定期取得を開始 (間隔: %v)", r.interval)
}

// Stop は再取得ループを停止する
func (r *Refresher) Stop(ctx context.Context) {
	close(r.stopCh)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		log.Printf("天気取得ループの停止がタイムアウトしました")
	case <-ctx.Done():
	}

	log.Println("天気データの定期取得を停止")
}

// refreshLoop は定期再取得を行う
func (r *Refresher) refreshLoop(ctx context.Context) {
	defer r.wg.Done()

	// 起動直後に1回取得
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh は1回の取得とパネル再生成を行う
// 失敗時は前回の取得結果を保持したままログを出す
func (r *Refresher) refresh(ctx context.Context) {
	oc, err := r.client.Fetch(ctx)
	if err != nil {
		log.Printf("天気データの取得に失敗: %v", err)
		return
	}

	now := time.Now()
	png, err := r.panel.Render(oc, now)
	if err != nil {
		log.Printf("天気パネルの生成に失敗: %v", err)
		// データ自体は保持する
	}

	r.mu.Lock()
	r.latest = oc
	r.fetchedAt = now
	if err == nil {
		r.panelPNG = png
	}
	r.mu.Unlock()
}

// Latest は最新の取得結果を返す
// まだ1回も取得できていない場合は ok=false
func (r *Refresher) Latest() (oc *OneCall, fetchedAt time.Time, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return nil, time.Time{}, false
	}
	return r.latest, r.fetchedAt, true
}

// PanelPNG は最新のパネルPNGを返す
// まだ生成できていない場合は ok=false
func (r *Refresher) PanelPNG() (png []byte, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.panelPNG) == 0 {
		return nil, false
	}
	return r.panelPNG, true
}
