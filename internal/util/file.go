package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectMimeType 读取前 512 字节探测 MIME 类型
func DetectMimeType(reader io.Reader) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if n == 0 {
		return "", errors.New("empty file")
	}
	return http.DetectContentType(buffer[:n]), nil
}

// ExtensionAllowed 判断文件扩展名是否在白名单中；白名单为空时全部允许。
// 白名单项可写成 ".pdf"、"pdf" 或 MIME 前缀如 "image/"
func ExtensionAllowed(filename, mimeType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.Contains(a, "/") {
			if strings.HasPrefix(mimeType, strings.TrimSuffix(a, "*")) {
				return true
			}
			continue
		}
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if ext == a {
			return true
		}
	}
	return false
}
