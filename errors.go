// 文件路径: errors.go
// 模块说明: 门面层的哨兵错误，调用方用 errors.Is 区分失败类别。
package server

import "errors"

var (
	// ErrConfiguration marks invalid construction input, most commonly
	// incomplete or unparsable TLS material.
	ErrConfiguration = errors.New("server: invalid configuration")

	// ErrBind marks a failed listener bind. The address-in-use case is
	// retried once after a fixed delay before this is returned.
	ErrBind = errors.New("server: address bind failed")

	// ErrRuntimeSocket marks a listener fault after a successful bind.
	// It is reported through OnServerError and returned from Wait.
	ErrRuntimeSocket = errors.New("server: listener fault")

	// ErrAlreadyStarted is returned by Start and by the middleware
	// activation methods once the server has left the created state.
	ErrAlreadyStarted = errors.New("server: already started")

	// ErrClosed is returned for operations on a closed server.
	ErrClosed = errors.New("server: closed")
)
