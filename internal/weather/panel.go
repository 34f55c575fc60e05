package weather

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// パネルの出力サイズ（表示ディスプレイに合わせる）
const (
	panelWidth  = 1920
	panelHeight = 1080

	// テキストは小さいキャンバスに描いてから4倍に拡大する
	// （ビットマップフォントをそのまま1080pに描くと読めないため）
	drawScale  = 4
	drawWidth  = panelWidth / drawScale
	drawHeight = panelHeight / drawScale
)

// Panel は天気パネルPNGを生成する
type Panel struct {
	background color.RGBA
	foreground color.RGBA
	accent     color.RGBA
}

// NewPanel は新しいPanelを作成する
func NewPanel() *Panel {
	return &Panel{
		background: color.RGBA{R: 10, G: 10, B: 20, A: 255},
		foreground: color.RGBA{R: 235, G: 235, B: 235, A: 255},
		accent:     color.RGBA{R: 120, G: 180, B: 255, A: 255},
	}
}

// Render は天気データからパネルPNGを生成する
func (p *Panel) Render(oc *OneCall, now time.Time) ([]byte, error) {
	if oc == nil {
		return nil, fmt.Errorf("天気データがありません")
	}

	// 小さいキャンバスに描画
	canvas := image.NewRGBA(image.Rect(0, 0, drawWidth, drawHeight))
	for y := 0; y < drawHeight; y++ {
		for x := 0; x < drawWidth; x++ {
			canvas.Set(x, y, p.background)
		}
	}

	// inconsolataはラテン文字のみのビットマップフォントで、未収録の
	// グリフは描画されずに欠落する。パネル上のラベルはASCIIで描く
	y := 24
	p.drawText(canvas, 16, y, inconsolata.Bold8x16, p.accent,
		fmt.Sprintf("WEATHER  %s", now.Format("2006-01-02 15:04")))
	y += 28

	// 現在の状態
	cur := oc.Current
	p.drawText(canvas, 16, y, inconsolata.Bold8x16, p.foreground,
		fmt.Sprintf("Now: %.0f° (feels %.0f°)  %s", cur.Temp, cur.FeelsLike, weatherText(cur.Weather)))
	y += 20
	p.drawText(canvas, 16, y, inconsolata.Regular8x16, p.foreground,
		fmt.Sprintf("Humidity %d%%  Wind %.0f (%d°)  UV %.1f", cur.Humidity, cur.WindSpeed, cur.WindDeg, cur.UVI))
	y += 28

	// 今日・明日の予報
	labels := []string{"Today", "Tomorrow"}
	for i, label := range labels {
		if i >= len(oc.Daily) {
			break
		}
		d := oc.Daily[i]
		p.drawText(canvas, 16, y, inconsolata.Bold8x16, p.accent, label)
		y += 18
		p.drawText(canvas, 16, y, inconsolata.Regular8x16, p.foreground,
			fmt.Sprintf("High %.0f° / Low %.0f°  Precip %.0f%%  %s",
				d.Temp.Max, d.Temp.Min, d.Pop*100, weatherText(d.Weather)))
		y += 24
	}

	// 警報
	if len(oc.Alerts) > 0 {
		alert := color.RGBA{R: 255, G: 120, B: 120, A: 255}
		for _, a := range oc.Alerts {
			if y > drawHeight-20 {
				break
			}
			p.drawText(canvas, 16, y, inconsolata.Bold8x16, alert,
				fmt.Sprintf("ALERT: %s", a.Event))
			y += 18
		}
	}

	// 出力サイズへ拡大
	out := image.NewRGBA(image.Rect(0, 0, panelWidth, panelHeight))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText は指定位置にテキストを描画する
func (p *Panel) drawText(dst *image.RGBA, x, y int, face font.Face, col color.RGBA, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// weatherText は気象状態リストの先頭の説明文を返す
func weatherText(ws []Summary) string {
	if len(ws) == 0 {
		return "-"
	}
	return ws[0].Description
}
