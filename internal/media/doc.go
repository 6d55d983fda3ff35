// Package media 聚合可合并的资源类型（样式/脚本），并提供统一的注册入口。
//
// 每种类型需要：
//   1. 在 internal/media/<kind>/ 目录下实现 Combiner；
//   2. 通过本包暴露的 MustRegister 在 init() 中注册类型元数据；
//   3. 声明 MIME 与正文前缀，供服务层输出响应头。
//
// 该包同时负责类型发现以及诊断端的对外查询能力。
package media
