package config

import (
	"os"
	"strconv"
)

// Config is assembled from the environment. Missing credentials are not an
// error here: the adapter behind a missing key simply reports unavailable.
type Config struct {
	// Cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheDir      string

	// Coin guide
	CoinGuideBaseURL string

	// Chart price guide
	ChartPriceBaseURL string

	// Dealer sheet (subscriber site, browser fetch)
	DealerSheetBaseURL string
	DealerSheetCookie  string

	// Card API
	CardAPIBaseURL string
	CardAPIKey     string

	// SFTP report drop
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	return Config{
		// Cache
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		CacheDir:      getenv("PRICE_DESK_DATA_DIR", "data"),

		// Coin guide
		CoinGuideBaseURL: getenv("COINGUIDE_BASE_URL", "https://www.coinvaluelookup.com"),

		// Chart price guide
		ChartPriceBaseURL: getenv("CHARTPRICE_BASE_URL", "https://www.pricecharting.com"),

		// Dealer sheet
		DealerSheetBaseURL: getenv("DEALERSHEET_BASE_URL", "https://www.greysheet.com"),
		DealerSheetCookie:  os.Getenv("DEALERSHEET_COOKIE"),

		// Card API
		CardAPIBaseURL: getenv("CARDAPI_BASE_URL", "https://api.pokemontcg.io"),
		CardAPIKey:     os.Getenv("CARDAPI_KEY"),

		// SFTP
		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
