// Package bybit implements the CEX WebSocket feed against Bybit's public
// spot order-book stream.
package bybit

import (
	"fmt"
	"strings"
)

// OpRequest is a subscribe/unsubscribe/ping control frame.
type OpRequest struct {
	Op    string   `json:"op"`
	Args  []string `json:"args,omitempty"`
	ReqID string   `json:"req_id,omitempty"`
}

// OpResponse is the ack frame Bybit sends back for subscribe/unsubscribe/ping.
type OpResponse struct {
	Success bool   `json:"success"`
	RetMsg  string `json:"ret_msg"`
	Op      string `json:"op"`
	ReqID   string `json:"req_id"`
}

// DataFrame carries an orderbook snapshot or delta.
type DataFrame struct {
	Topic string        `json:"topic"`
	Type  string        `json:"type"` // "snapshot" | "delta"
	Ts    int64         `json:"ts"`
	Data  DataFramePayload `json:"data"`
	Cts   int64         `json:"cts"`
}

// DataFramePayload is the per-symbol book payload inside a DataFrame.
type DataFramePayload struct {
	Symbol string     `json:"s"`
	Bids   [][2]string `json:"b"`
	Asks   [][2]string `json:"a"`
}

// Topic builds the orderbook.<depth>.<SYMBOL> subscription topic.
func Topic(depth int, symbol string) string {
	return fmt.Sprintf("orderbook.%d.%s", depth, symbol)
}

// SymbolFromTopic extracts SYMBOL from "orderbook.<depth>.<SYMBOL>", or from
// a bare symbol if no dots are present.
func SymbolFromTopic(topic string) string {
	parts := strings.Split(topic, ".")
	return parts[len(parts)-1]
}

func isAckOp(op string) bool {
	return op == "subscribe" || op == "unsubscribe"
}
