// Package geo определяет адрес ямы по координатам.
package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pothole-vision/internal/domain/port"
)

// DefaultDaDataURL указывает на метод обратного геокодирования DaData.
const DefaultDaDataURL = "https://suggestions.dadata.ru/suggestions/api/4_1/rs/geolocate/address"

// DaData является клиентом обратного геокодирования.
type DaData struct {
	url    string
	apiKey string
	client *http.Client
}

type geolocateRequest struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`
}

type geolocateResponse struct {
	Suggestions []struct {
		Value string `json:"value"`
	} `json:"suggestions"`
}

func NewDaData(url, apiKey string, timeout time.Duration) *DaData {
	if url == "" {
		url = DefaultDaDataURL
	}
	return &DaData{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode возвращает ближайший адрес или пустую строку, если DaData ничего не нашла.
func (d *DaData) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	body, err := json.Marshal(geolocateRequest{Lat: lat, Lon: lon, Count: 1})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geolocate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("geolocate failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Suggestions) == 0 {
		return "", nil
	}
	return result.Suggestions[0].Value, nil
}

var _ port.Geocoder = (*DaData)(nil)
