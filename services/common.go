package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// HttpRequest sends data as JSON and returns the response body.
func HttpRequest(method, url string, header map[string]string, data interface{}) ([]byte, error) {
	var body *bytes.Buffer
	if data != nil {
		requestBody, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(requestBody)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, element := range header {
		req.Header.Set(key, element)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return respBody, fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return respBody, nil
}

func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// RoundTo rounds x half away from zero to the given number of decimals.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
