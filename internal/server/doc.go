// Package server exposes the evaluation engine over the network.
//
// Routes:
//
//	/ws            WebSocket; {"type":"eval","payload":{"input":"+ 1 2"}} is
//	               answered with {"type":"result","payload":{...}}, "ping"
//	               with "pong", malformed messages with "error"
//	/api/v1/eval   POST {"input":"..."} returning the same result payload
//	/healthz       JSON health report (engine self check, history store)
//
// Every request runs its own parse; connections are served concurrently.
package server
