// Package netsvr 把 HTTP 框架包成 NetSvr，讓路由註冊與生命週期管理不綁定特定框架。
//
// 目前的實作是 chi（標準庫 net/http 相容）；handler 與 middleware 都是 net/http 型別。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/blocklab/server/app"
)

// NetSvr 可註冊路由、可啟停，同時也是 http.Handler（方便 httptest 直接打）
type NetSvr interface {
	NetRouter
	app.Component
	http.Handler
}

// NetRouter 純路由行為。Group 回呼只拿得到 NetRouter，看不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)
	// Any GET 與 POST 都接受
	Any(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
