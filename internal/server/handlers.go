package server

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"teiten/internal/archive"
	"teiten/internal/weather"
)

// handleHealth はヘルスチェックエンドポイントの実装
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleStatus はシステム状態取得エンドポイントの実装
func (s *Server) handleStatus(c *gin.Context) {
	days := archive.ListDays(s.config.Archive.Root)

	c.JSON(http.StatusOK, gin.H{
		"status": "running",
		"server": gin.H{
			"host": s.config.Server.Host,
			"port": s.config.Server.Port,
		},
		"cameras":          len(s.config.Archive.Cameras),
		"archive_days":     len(days),
		"slideshow_images": len(s.images),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

// handleSlideshow はスライドショーページの実装
// 画像を一定間隔で切り替えるHTMLを返す
func (s *Server) handleSlideshow(c *gin.Context) {
	if len(s.images) == 0 {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, `<!DOCTYPE html>
<html lang="ja"><body style="background:#000;color:#fff;">
<p>スライドショー画像が設定されていません。</p>
</body></html>`)
		return
	}

	intervalMs := s.config.Slideshow.Interval.Milliseconds()
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <title>スライドショー</title>
    <script>
        let idx = 0;
        function next() {
            idx = (idx + 1) %% %d;
            document.getElementById('s').src = '/slideshow/image?idx=' + idx + '&t=' + Date.now();
        }
        setInterval(next, %d);
    </script>
</head>
<body style="margin:0;background:#000;display:flex;justify-content:center;align-items:center;height:100vh;">
    <img id="s" src="/slideshow/image?idx=0" style="max-width:100%%;max-height:100%%;object-fit:contain;">
</body>
</html>`, len(s.images), intervalMs)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, page)
}

// handleSlideshowImage はスライドショー画像配信の実装
// インデックスは画像数で折り返す
func (s *Server) handleSlideshowImage(c *gin.Context) {
	if len(s.images) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "no_images",
			"message": "スライドショー画像がありません",
		})
		return
	}

	idx, err := strconv.Atoi(c.DefaultQuery("idx", "0"))
	if err != nil || idx < 0 {
		idx = 0
	}

	c.File(s.images[idx%len(s.images)])
}

// handleListVideos はカメラ・日ごとのMP4一覧取得の実装
// dayを省略した場合は最新日を使う
func (s *Server) handleListVideos(c *gin.Context) {
	day := c.Query("day")
	if day == "" {
		latest, err := archive.LatestDay(s.config.Archive.Root)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "no_days",
				"message": "アーカイブに日付ディレクトリがありません",
			})
			return
		}
		day = latest
	}

	camera := c.Query("camera")
	if !s.knownCameraDir(camera) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_camera",
			"message": "未知のカメラディレクトリです",
		})
		return
	}

	dir := archive.CameraDir(s.config.Archive.Root, day, camera)
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "day_not_found",
			"message": "指定された日のカメラディレクトリがありません",
		})
		return
	}

	videos := make([]gin.H, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp4" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		videos = append(videos, gin.H{
			"name":     entry.Name(),
			"size":     info.Size(),
			"mod_time": info.ModTime().Format(time.RFC3339),
			"url":      fmt.Sprintf("/videos/%s/%s/%s", day, camera, entry.Name()),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"day":    day,
		"camera": camera,
		"videos": videos,
	})
}

// handleVideo はMP4配信の実装
// プログレッシブ再生のためinlineで返す
func (s *Server) handleVideo(c *gin.Context) {
	day := c.Param("day")
	camera := c.Param("camera")
	name := c.Param("name")

	// アーカイブレイアウトに対する検証（トラバーサル対策）
	if !validDayName(day) || !s.knownCameraDir(camera) || !validVideoName(camera, name) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_path",
			"message": "無効な動画パスです",
		})
		return
	}

	path := filepath.Join(archive.CameraDir(s.config.Archive.Root, day, camera), name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "video_not_found",
			"message": "動画が見つかりません",
		})
		return
	}

	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	c.File(path)
}

// handleWeatherPage は天気サマリーページの実装
func (s *Server) handleWeatherPage(c *gin.Context) {
	if s.weather == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "weather_disabled",
			"message": "天気機能は無効です",
		})
		return
	}

	oc, fetchedAt, ok := s.weather.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "weather_unavailable",
			"message": "天気データをまだ取得できていません",
		})
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="UTF-8"><title>天気</title></head>
<body style="background:#101018;color:#eee;font-family:monospace;">
<h1>天気パネル</h1>
<p>取得時刻: %s</p>
<img src="/weather/panel.png" style="max-width:100%%;">
<h2>現在</h2>
<p>%.0f° (体感 %.0f°) / 湿度 %d%% / 風 %.0f</p>
`, fetchedAt.Format("15:04:05"), oc.Current.Temp, oc.Current.FeelsLike,
		oc.Current.Humidity, oc.Current.WindSpeed)

	// 予報時刻は観測地点のタイムゾーンで表示する
	loc := oc.Location()

	if len(oc.Hourly) > 0 {
		b.WriteString("<h2>今後24時間</h2><ul>\n")
		for i, h := range oc.Hourly {
			if i >= 24 {
				break
			}
			ts := time.Unix(h.Dt, 0).In(loc)
			fmt.Fprintf(&b, "<li>%s: %.0f° 降水確率 %.0f%% %s</li>\n",
				ts.Format("15:04"), h.Temp, h.Pop*100, html.EscapeString(weatherDesc(h.Weather)))
		}
		b.WriteString("</ul>\n")
	}

	if len(oc.Daily) > 0 {
		b.WriteString("<h2>今後8日間</h2><ul>\n")
		for i, d := range oc.Daily {
			if i >= 8 {
				break
			}
			ts := time.Unix(d.Dt, 0).In(loc)
			fmt.Fprintf(&b, "<li>%s: 最高 %.0f° / 最低 %.0f° 降水確率 %.0f%% %s</li>\n",
				ts.Format("01/02"), d.Temp.Max, d.Temp.Min, d.Pop*100,
				html.EscapeString(weatherDesc(d.Weather)))
		}
		b.WriteString("</ul>\n")
	}

	if len(oc.Alerts) > 0 {
		b.WriteString("<h2>警報</h2><ul>\n")
		for _, a := range oc.Alerts {
			fmt.Fprintf(&b, "<li>%s (%s)</li>\n",
				html.EscapeString(a.Event), html.EscapeString(a.SenderName))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</body></html>")

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// handleWeatherPanel は天気パネルPNG配信の実装
func (s *Server) handleWeatherPanel(c *gin.Context) {
	if s.weather == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	data, ok := s.weather.PanelPNG()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "panel_not_ready",
			"message": "天気パネルをまだ生成できていません",
		})
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// ヘルパー関数

// knownCameraDir はカメラディレクトリ名が設定に含まれるかを返す
func (s *Server) knownCameraDir(dir string) bool {
	for _, d := range s.config.Archive.Cameras {
		if d == dir {
			return true
		}
	}
	return false
}

// validDayName は日付パラメータが8桁の数字かを返す
func validDayName(day string) bool {
	if len(day) != 8 {
		return false
	}
	for _, r := range day {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validVideoName は動画名が <camera>-HHMM.mp4 形式かを返す
func validVideoName(camera, name string) bool {
	if filepath.Base(name) != name {
		return false
	}
	rest, ok := strings.CutPrefix(name, camera+"-")
	if !ok {
		return false
	}
	digits, ok := strings.CutSuffix(rest, ".mp4")
	if !ok || len(digits) != 4 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// weatherDesc は気象状態リストの先頭の説明文を返す
func weatherDesc(ws []weather.Summary) string {
	if len(ws) == 0 {
		return ""
	}
	return ws[0].Description
}
