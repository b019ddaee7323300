package config

// defaultSymbols is the built-in NSE large-cap watchlist, used when neither
// the config file nor the environment provides one.
var defaultSymbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"HINDUNILVR", "SBIN", "BHARTIARTL", "KOTAKBANK", "BAJFINANCE",
	"ITC", "LT", "AXISBANK", "ASIANPAINT", "MARUTI",
	"HCLTECH", "SUNPHARMA", "TITAN", "WIPRO", "ULTRACEMCO",
	"NTPC", "POWERGRID", "NESTLEIND", "TECHM", "TATAMOTORS",
	"ONGC", "COALINDIA", "JSWSTEEL", "ADANIENT", "ADANIPORTS",
	"TATASTEEL", "GRASIM", "BAJAJFINSV", "DIVISLAB", "BPCL",
	"DRREDDY", "CIPLA", "BRITANNIA", "EICHERMOT", "APOLLOHOSP",
	"HEROMOTOCO", "HINDALCO", "INDUSINDBK", "UPL", "SBILIFE",
	"BAJAJ-AUTO", "TATACONSUM", "M&M", "HDFC", "VEDL",
}

// DefaultSymbols returns a copy of the built-in watchlist.
func DefaultSymbols() []string {
	out := make([]string, len(defaultSymbols))
	copy(out, defaultSymbols)
	return out
}
