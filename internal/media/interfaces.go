package media

// Kind 是资源类型键，同时作为缓存键后缀与缓存目录名。
type Kind string

const (
	KindStyle  Kind = "css"
	KindScript Kind = "js"
)

// Transform 是可插拔的压缩函数，输入输出均为完整文本，不得修改共享状态。
type Transform func(string) (string, error)

// SourceReader 读取单个源文件的原始内容，失败时应返回 *SourceReadError。
type SourceReader func(path string) ([]byte, error)

// Combiner 描述某类资源如何把有序文件列表合并为一个产物。
type Combiner interface {
	Combine(files []string, read SourceReader, transform Transform) ([]byte, error)
}

// CombinerFunc adapts a function to the Combiner interface.
type CombinerFunc func(files []string, read SourceReader, transform Transform) ([]byte, error)

// Combine makes CombinerFunc satisfy Combiner.
func (f CombinerFunc) Combine(files []string, read SourceReader, transform Transform) ([]byte, error) {
	return f(files, read, transform)
}

// Metadata 记录一种资源类型的静态信息，供配置校验、服务层与诊断端使用。
type Metadata struct {
	Kind        Kind
	Description string
	ContentType string
	// BodyPrefix 在发送前拼接到正文头部，不写入缓存。
	BodyPrefix string
	Combiner   Combiner
}
