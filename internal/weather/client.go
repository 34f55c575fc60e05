// Package weather 天気パネル用のデータ取得と画像生成を担う
//
// # 責務
// - OpenWeather One Call 3.0 APIからの天気データ取得
// - バックグラウンドでの定期再取得と最新データの保持
// - 表示用パネルPNGの生成
//
// # 仕様
// - exclude指定なしで全ペイロード（current/minutely/hourly/daily/alerts）
//   を取得する。HTMLビューでminutely等を使うため
// - API呼び出しはバックグラウンドで一定間隔ごとに行い、HTTPハンドラは
//   常に最新の取得済みデータを返す
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultBaseURL はOne Call 3.0のエンドポイント
const defaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// Client はOne Call APIのクライアント
type Client struct {
	baseURL    string
	apiKey     string
	latitude   float64
	longitude  float64
	units      string
	httpClient *http.Client
}

// NewClient は新しいClientを作成する
func NewClient(apiKey string, latitude, longitude float64, units string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		latitude:  latitude,
		longitude: longitude,
		units:     units,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OneCall はOne Call 3.0のレスポンス（使用する項目のみ）
type OneCall struct {
	TimezoneOffset int         `json:"timezone_offset"`
	Current        Conditions  `json:"current"`
	Minutely       []Minute    `json:"minutely"`
	Hourly         []Condition `json:"hourly"`
	Daily          []Day       `json:"daily"`
	Alerts         []Alert     `json:"alerts"`
}

// Location は観測地点のタイムゾーンを返す
// 予報時刻の表示はサーバーのローカル時刻ではなく地点の時刻で行う
func (o *OneCall) Location() *time.Location {
	return time.FixedZone("", o.TimezoneOffset)
}

// Conditions は現在の気象状態
type Conditions struct {
	Dt        int64     `json:"dt"`
	Temp      float64   `json:"temp"`
	FeelsLike float64   `json:"feels_like"`
	Humidity  int       `json:"humidity"`
	WindSpeed float64   `json:"wind_speed"`
	WindDeg   int       `json:"wind_deg"`
	UVI       float64   `json:"uvi"`
	Weather   []Summary `json:"weather"`
}

// Condition は1時間ごとの予報
type Condition struct {
	Dt      int64     `json:"dt"`
	Temp    float64   `json:"temp"`
	Pop     float64   `json:"pop"`
	Weather []Summary `json:"weather"`
}

// Minute は1分ごとの降水予報
type Minute struct {
	Dt            int64   `json:"dt"`
	Precipitation float64 `json:"precipitation"`
}

// Day は1日ごとの予報
type Day struct {
	Dt      int64     `json:"dt"`
	Temp    DayTemp   `json:"temp"`
	Pop     float64   `json:"pop"`
	Weather []Summary `json:"weather"`
}

// DayTemp は日内の気温レンジ
type DayTemp struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary は気象状態の要約
type Summary struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Alert は気象警報
type Alert struct {
	SenderName  string `json:"sender_name"`
	Event       string `json:"event"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Description string `json:"description"`
}

// Fetch は最新の天気データを取得する
func (c *Client) Fetch(ctx context.Context) (*OneCall, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", c.latitude))
	q.Set("lon", fmt.Sprintf("%f", c.longitude))
	q.Set("units", c.units)
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("天気APIの呼び出しに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("天気APIがエラーを返しました: %d (%s)", resp.StatusCode, string(body))
	}

	var oc OneCall
	if err := json.NewDecoder(resp.Body).Decode(&oc); err != nil {
		return nil, fmt.Errorf("天気データの解析に失敗: %w", err)
	}

	return &oc, nil
}
