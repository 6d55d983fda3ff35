package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供 bundle/类型/缓存键与是否重新生成等字段，供资源请求日志复用。
func RequestFields(bundle, kind, cacheKey string, regenerated bool) logrus.Fields {
	return logrus.Fields{
		"bundle":      bundle,
		"kind":        kind,
		"cache_key":   cacheKey,
		"regenerated": regenerated,
	}
}
