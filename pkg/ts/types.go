package ts

// Domain types for the MarketData, Brokerage, and OrderExecution services.
// Field names mirror the wire format, which capitalizes JSON keys.

// Quote represents a quote snapshot for a single symbol.
type Quote struct {
	Symbol        string       `json:"Symbol"                  yaml:"symbol"`
	Open          string       `json:"Open,omitempty"          yaml:"open,omitempty"`
	High          string       `json:"High,omitempty"          yaml:"high,omitempty"`
	Low           string       `json:"Low,omitempty"           yaml:"low,omitempty"`
	PreviousClose string       `json:"PreviousClose,omitempty" yaml:"previous_close,omitempty"`
	Last          string       `json:"Last,omitempty"          yaml:"last,omitempty"`
	Ask           string       `json:"Ask,omitempty"           yaml:"ask,omitempty"`
	AskSize       string       `json:"AskSize,omitempty"       yaml:"ask_size,omitempty"`
	Bid           string       `json:"Bid,omitempty"           yaml:"bid,omitempty"`
	BidSize       string       `json:"BidSize,omitempty"       yaml:"bid_size,omitempty"`
	NetChange     string       `json:"NetChange,omitempty"     yaml:"net_change,omitempty"`
	NetChangePct  string       `json:"NetChangePct,omitempty"  yaml:"net_change_pct,omitempty"`
	High52Week    string       `json:"High52Week,omitempty"    yaml:"high_52_week,omitempty"`
	Low52Week     string       `json:"Low52Week,omitempty"     yaml:"low_52_week,omitempty"`
	Volume        string       `json:"Volume,omitempty"        yaml:"volume,omitempty"`
	LastSize      string       `json:"LastSize,omitempty"      yaml:"last_size,omitempty"`
	LastVenue     string       `json:"LastVenue,omitempty"     yaml:"last_venue,omitempty"`
	VWAP          string       `json:"VWAP,omitempty"          yaml:"vwap,omitempty"`
	TickSizeTier  string       `json:"TickSizeTier,omitempty"  yaml:"tick_size_tier,omitempty"`
	TradeTime     string       `json:"TradeTime,omitempty"     yaml:"trade_time,omitempty"`
	MarketFlags   *MarketFlags `json:"MarketFlags,omitempty"   yaml:"market_flags,omitempty"`
}

// MarketFlags carries trading-state indicators for a quote.
type MarketFlags struct {
	IsBats         bool `json:"IsBats"         yaml:"is_bats"`
	IsDelayed      bool `json:"IsDelayed"      yaml:"is_delayed"`
	IsHalted       bool `json:"IsHalted"       yaml:"is_halted"`
	IsHardToBorrow bool `json:"IsHardToBorrow" yaml:"is_hard_to_borrow"`
}

// QuoteSnapshotError reports a symbol the snapshot endpoint rejected.
type QuoteSnapshotError struct {
	Symbol string `json:"Symbol" yaml:"symbol"`
	Error  string `json:"Error"  yaml:"error"`
}

// QuoteSnapshotResponse is the /v3/marketdata/quotes response.
type QuoteSnapshotResponse struct {
	Quotes []Quote              `json:"Quotes"           yaml:"quotes"`
	Errors []QuoteSnapshotError `json:"Errors,omitempty" yaml:"errors,omitempty"`
}

// Bar represents one OHLCV bar.
type Bar struct {
	Open           string `json:"Open"                     yaml:"open"`
	High           string `json:"High"                     yaml:"high"`
	Low            string `json:"Low"                      yaml:"low"`
	Close          string `json:"Close"                    yaml:"close"`
	TimeStamp      string `json:"TimeStamp"                yaml:"time_stamp"`
	TotalVolume    string `json:"TotalVolume"              yaml:"total_volume"`
	DownTicks      int64  `json:"DownTicks,omitempty"      yaml:"down_ticks,omitempty"`
	DownVolume     int64  `json:"DownVolume,omitempty"     yaml:"down_volume,omitempty"`
	UpTicks        int64  `json:"UpTicks,omitempty"        yaml:"up_ticks,omitempty"`
	UpVolume       int64  `json:"UpVolume,omitempty"       yaml:"up_volume,omitempty"`
	OpenInterest   string `json:"OpenInterest,omitempty"   yaml:"open_interest,omitempty"`
	IsRealtime     bool   `json:"IsRealtime,omitempty"     yaml:"is_realtime,omitempty"`
	IsEndOfHistory bool   `json:"IsEndOfHistory,omitempty" yaml:"is_end_of_history,omitempty"`
	BarStatus      string `json:"BarStatus,omitempty"      yaml:"bar_status,omitempty"`
	Epoch          int64  `json:"Epoch,omitempty"          yaml:"epoch,omitempty"`
}

// BarsResponse is the /v3/marketdata/barcharts response.
type BarsResponse struct {
	Bars []Bar `json:"Bars" yaml:"bars"`
}

// BarsParams selects the bar interval and range for a bar chart request.
type BarsParams struct {
	Interval        string `json:"interval,omitempty"        yaml:"interval,omitempty"`
	Unit            string `json:"unit,omitempty"            yaml:"unit,omitempty"`
	BarsBack        int    `json:"barsback,omitempty"        yaml:"barsback,omitempty"`
	FirstDate       string `json:"firstdate,omitempty"       yaml:"firstdate,omitempty"`
	LastDate        string `json:"lastdate,omitempty"        yaml:"lastdate,omitempty"`
	SessionTemplate string `json:"sessiontemplate,omitempty" yaml:"sessiontemplate,omitempty"`
}

// SymbolDetail describes one tradable symbol.
type SymbolDetail struct {
	Symbol         string `json:"Symbol"                   yaml:"symbol"`
	AssetType      string `json:"AssetType"                yaml:"asset_type"`
	Description    string `json:"Description,omitempty"    yaml:"description,omitempty"`
	Exchange       string `json:"Exchange,omitempty"       yaml:"exchange,omitempty"`
	Country        string `json:"Country,omitempty"        yaml:"country,omitempty"`
	Currency       string `json:"Currency,omitempty"       yaml:"currency,omitempty"`
	Root           string `json:"Root,omitempty"           yaml:"root,omitempty"`
	Underlying     string `json:"Underlying,omitempty"     yaml:"underlying,omitempty"`
	ExpirationDate string `json:"ExpirationDate,omitempty" yaml:"expiration_date,omitempty"`
	OptionType     string `json:"OptionType,omitempty"     yaml:"option_type,omitempty"`
	StrikePrice    string `json:"StrikePrice,omitempty"    yaml:"strike_price,omitempty"`
}

// SymbolDetailError reports a symbol the details endpoint rejected.
type SymbolDetailError struct {
	Symbol string `json:"Symbol" yaml:"symbol"`
	Error  string `json:"Error"  yaml:"error"`
}

// SymbolDetailsResponse is the /v3/marketdata/symbols response.
type SymbolDetailsResponse struct {
	Symbols []SymbolDetail      `json:"Symbols"          yaml:"symbols"`
	Errors  []SymbolDetailError `json:"Errors,omitempty" yaml:"errors,omitempty"`
}

// CryptoSymbolNamesResponse lists the supported crypto pairs.
type CryptoSymbolNamesResponse struct {
	SymbolNames []string `json:"SymbolNames" yaml:"symbol_names"`
}

// OptionExpiration is one expiration date for an underlying.
type OptionExpiration struct {
	Date string `json:"Date" yaml:"date"`
	Type string `json:"Type" yaml:"type"`
}

// OptionExpirationsResponse is the /v3/marketdata/options/expirations response.
type OptionExpirationsResponse struct {
	Expirations []OptionExpiration `json:"Expirations" yaml:"expirations"`
}

// Account represents a brokerage account.
type Account struct {
	AccountID     string         `json:"AccountID"               yaml:"account_id"`
	AccountType   string         `json:"AccountType"             yaml:"account_type"`
	Alias         string         `json:"Alias,omitempty"         yaml:"alias,omitempty"`
	Currency      string         `json:"Currency,omitempty"      yaml:"currency,omitempty"`
	Status        string         `json:"Status,omitempty"        yaml:"status,omitempty"`
	AccountDetail *AccountDetail `json:"AccountDetail,omitempty" yaml:"account_detail,omitempty"`
}

// AccountDetail carries account capability flags.
type AccountDetail struct {
	DayTradingQualified        bool `json:"DayTradingQualified"        yaml:"day_trading_qualified"`
	EnrolledInRegTProgram      bool `json:"EnrolledInRegTProgram"      yaml:"enrolled_in_reg_t_program"`
	IsStockLocateEligible      bool `json:"IsStockLocateEligible"      yaml:"is_stock_locate_eligible"`
	OptionApprovalLevel        int  `json:"OptionApprovalLevel"        yaml:"option_approval_level"`
	PatternDayTrader           bool `json:"PatternDayTrader"           yaml:"pattern_day_trader"`
	RequiresBuyingPowerWarning bool `json:"RequiresBuyingPowerWarning" yaml:"requires_buying_power_warning"`
}

// AccountsResponse is the /v3/brokerage/accounts response.
type AccountsResponse struct {
	Accounts []Account `json:"Accounts" yaml:"accounts"`
}

// Balance represents the balance detail for one account.
type Balance struct {
	AccountID        string `json:"AccountID"                  yaml:"account_id"`
	AccountType      string `json:"AccountType,omitempty"      yaml:"account_type,omitempty"`
	BuyingPower      string `json:"BuyingPower,omitempty"      yaml:"buying_power,omitempty"`
	CashBalance      string `json:"CashBalance,omitempty"      yaml:"cash_balance,omitempty"`
	Commission       string `json:"Commission,omitempty"       yaml:"commission,omitempty"`
	Equity           string `json:"Equity,omitempty"           yaml:"equity,omitempty"`
	MarketValue      string `json:"MarketValue,omitempty"      yaml:"market_value,omitempty"`
	TodaysProfitLoss string `json:"TodaysProfitLoss,omitempty" yaml:"todays_profit_loss,omitempty"`
	UnclearedDeposit string `json:"UnclearedDeposit,omitempty" yaml:"uncleared_deposit,omitempty"`
}

// BalanceError reports an account the balances endpoint rejected.
type BalanceError struct {
	AccountID string `json:"AccountID" yaml:"account_id"`
	Error     string `json:"Error"     yaml:"error"`
	Message   string `json:"Message"   yaml:"message"`
}

// BalancesResponse is the /v3/brokerage/accounts/{ids}/balances response.
type BalancesResponse struct {
	Balances []Balance      `json:"Balances"         yaml:"balances"`
	Errors   []BalanceError `json:"Errors,omitempty" yaml:"errors,omitempty"`
}

// Position represents one open position.
type Position struct {
	AccountID            string `json:"AccountID"                      yaml:"account_id"`
	PositionID           string `json:"PositionID,omitempty"           yaml:"position_id,omitempty"`
	Symbol               string `json:"Symbol"                         yaml:"symbol"`
	AssetType            string `json:"AssetType,omitempty"            yaml:"asset_type,omitempty"`
	AveragePrice         string `json:"AveragePrice,omitempty"         yaml:"average_price,omitempty"`
	Last                 string `json:"Last,omitempty"                 yaml:"last,omitempty"`
	LongShort            string `json:"LongShort,omitempty"            yaml:"long_short,omitempty"`
	MarketValue          string `json:"MarketValue,omitempty"          yaml:"market_value,omitempty"`
	Quantity             string `json:"Quantity,omitempty"             yaml:"quantity,omitempty"`
	TotalCost            string `json:"TotalCost,omitempty"            yaml:"total_cost,omitempty"`
	UnrealizedProfitLoss string `json:"UnrealizedProfitLoss,omitempty" yaml:"unrealized_profit_loss,omitempty"`
	Timestamp            string `json:"Timestamp,omitempty"            yaml:"timestamp,omitempty"`
}

// PositionsResponse is the /v3/brokerage/accounts/{ids}/positions response.
type PositionsResponse struct {
	Positions []Position     `json:"Positions"        yaml:"positions"`
	Errors    []BalanceError `json:"Errors,omitempty" yaml:"errors,omitempty"`
}

// Order represents an order as reported by the brokerage service.
type Order struct {
	AccountID         string     `json:"AccountID"                   yaml:"account_id"`
	OrderID           string     `json:"OrderID"                     yaml:"order_id"`
	Status            string     `json:"Status,omitempty"            yaml:"status,omitempty"`
	StatusDescription string     `json:"StatusDescription,omitempty" yaml:"status_description,omitempty"`
	OpenedDateTime    string     `json:"OpenedDateTime,omitempty"    yaml:"opened_date_time,omitempty"`
	ClosedDateTime    string     `json:"ClosedDateTime,omitempty"    yaml:"closed_date_time,omitempty"`
	OrderType         string     `json:"OrderType,omitempty"         yaml:"order_type,omitempty"`
	Duration          string     `json:"Duration,omitempty"          yaml:"duration,omitempty"`
	LimitPrice        string     `json:"LimitPrice,omitempty"        yaml:"limit_price,omitempty"`
	StopPrice         string     `json:"StopPrice,omitempty"         yaml:"stop_price,omitempty"`
	FilledPrice       string     `json:"FilledPrice,omitempty"       yaml:"filled_price,omitempty"`
	Legs              []OrderLeg `json:"Legs,omitempty"              yaml:"legs,omitempty"`
}

// OrderLeg is one leg of an order.
type OrderLeg struct {
	Symbol            string `json:"Symbol"                      yaml:"symbol"`
	AssetType         string `json:"AssetType,omitempty"         yaml:"asset_type,omitempty"`
	BuyOrSell         string `json:"BuyOrSell,omitempty"         yaml:"buy_or_sell,omitempty"`
	OpenOrClose       string `json:"OpenOrClose,omitempty"       yaml:"open_or_close,omitempty"`
	QuantityOrdered   string `json:"QuantityOrdered,omitempty"   yaml:"quantity_ordered,omitempty"`
	QuantityRemaining string `json:"QuantityRemaining,omitempty" yaml:"quantity_remaining,omitempty"`
	ExecQuantity      string `json:"ExecQuantity,omitempty"      yaml:"exec_quantity,omitempty"`
	ExecutionPrice    string `json:"ExecutionPrice,omitempty"    yaml:"execution_price,omitempty"`
}

// OrdersResponse is the /v3/brokerage/accounts/{ids}/orders response.
type OrdersResponse struct {
	Orders    []Order        `json:"Orders"              yaml:"orders"`
	Errors    []BalanceError `json:"Errors,omitempty"    yaml:"errors,omitempty"`
	NextToken string         `json:"NextToken,omitempty" yaml:"next_token,omitempty"`
}

// OrderRequest is the body for placing or confirming an order.
type OrderRequest struct {
	AccountID       string                 `json:"AccountID"                 yaml:"account_id"`
	Symbol          string                 `json:"Symbol"                    yaml:"symbol"`
	Quantity        string                 `json:"Quantity"                  yaml:"quantity"`
	OrderType       string                 `json:"OrderType"                 yaml:"order_type"`
	TradeAction     string                 `json:"TradeAction"               yaml:"trade_action"`
	LimitPrice      string                 `json:"LimitPrice,omitempty"      yaml:"limit_price,omitempty"`
	StopPrice       string                 `json:"StopPrice,omitempty"       yaml:"stop_price,omitempty"`
	Route           string                 `json:"Route,omitempty"           yaml:"route,omitempty"`
	TimeInForce     *TimeInForce           `json:"TimeInForce,omitempty"     yaml:"time_in_force,omitempty"`
	AdvancedOptions map[string]interface{} `json:"AdvancedOptions,omitempty" yaml:"advanced_options,omitempty"`
}

// TimeInForce sets order duration.
type TimeInForce struct {
	Duration   string `json:"Duration"             yaml:"duration"`
	Expiration string `json:"Expiration,omitempty" yaml:"expiration,omitempty"`
}

// OrderResponseEntry is the per-order result of a place/replace call.
type OrderResponseEntry struct {
	OrderID string `json:"OrderID"           yaml:"order_id"`
	Message string `json:"Message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"Error,omitempty"   yaml:"error,omitempty"`
}

// OrderResponse is the /v3/orderexecution/orders response.
type OrderResponse struct {
	Orders []OrderResponseEntry `json:"Orders,omitempty" yaml:"orders,omitempty"`
	Errors []OrderResponseEntry `json:"Errors,omitempty" yaml:"errors,omitempty"`
}

// CancelOrderResponse is the response to an order cancellation.
type CancelOrderResponse struct {
	OrderID string `json:"OrderID"           yaml:"order_id"`
	Message string `json:"Message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"Error,omitempty"   yaml:"error,omitempty"`
}

// OrderConfirmation is one entry of an order confirmation estimate.
type OrderConfirmation struct {
	Route               string `json:"Route,omitempty"               yaml:"route,omitempty"`
	Duration            string `json:"Duration,omitempty"            yaml:"duration,omitempty"`
	Account             string `json:"Account,omitempty"             yaml:"account,omitempty"`
	SummaryMessage      string `json:"SummaryMessage,omitempty"      yaml:"summary_message,omitempty"`
	EstimatedPrice      string `json:"EstimatedPrice,omitempty"      yaml:"estimated_price,omitempty"`
	EstimatedCommission string `json:"EstimatedCommission,omitempty" yaml:"estimated_commission,omitempty"`
	OrderConfirmID      string `json:"OrderConfirmID,omitempty"      yaml:"order_confirm_id,omitempty"`
}

// ConfirmOrderResponse is the /v3/orderexecution/orderconfirm response.
type ConfirmOrderResponse struct {
	Confirmations []OrderConfirmation `json:"Confirmations" yaml:"confirmations"`
}

// Route describes an execution route.
type Route struct {
	ID         string   `json:"Id"                   yaml:"id"`
	Name       string   `json:"Name"                 yaml:"name"`
	AssetTypes []string `json:"AssetTypes,omitempty" yaml:"asset_types,omitempty"`
}

// RoutesResponse is the /v3/orderexecution/routes response.
type RoutesResponse struct {
	Routes []Route `json:"Routes" yaml:"routes"`
}

// ActivationTrigger describes one activation trigger key.
type ActivationTrigger struct {
	Key         string `json:"Key"                   yaml:"key"`
	Name        string `json:"Name"                  yaml:"name"`
	Description string `json:"Description,omitempty" yaml:"description,omitempty"`
}

// ActivationTriggersResponse is the /v3/orderexecution/activationtriggers response.
type ActivationTriggersResponse struct {
	ActivationTriggers []ActivationTrigger `json:"ActivationTriggers" yaml:"activation_triggers"`
}
