package middleware

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// EnsureUTF8Body 把请求体统一转成 UTF-8
//
// Content-Type 声明了 charset 时按声明解码；未声明且不是合法 UTF-8 时按 GB18030 尝试
// （中文 Windows 终端的 curl 默认发送 GBK）。解码失败保留原文，交给 JSON 绑定报错。
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		_ = c.Request.Body.Close()
		body := raw
		if err == nil {
			if enc := bodyEncoding(c.GetHeader("Content-Type"), raw); enc != nil {
				if decoded, derr := enc.NewDecoder().Bytes(raw); derr == nil && utf8.Valid(decoded) {
					body = decoded
				}
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Request.ContentLength = int64(len(body))
		c.Next()
	}
}

// bodyEncoding 返回 nil 表示无需转换
func bodyEncoding(header string, raw []byte) encoding.Encoding {
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if charset := strings.ToLower(params["charset"]); charset != "" && charset != "utf-8" && charset != "utf8" {
			if enc, err := htmlindex.Get(charset); err == nil {
				return enc
			}
		}
	}
	if utf8.Valid(raw) {
		return nil
	}
	return simplifiedchinese.GB18030
}
