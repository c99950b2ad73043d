// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 observability 提供编排器的 OpenTelemetry 度量/追踪埋点与
一个后备的按模型价格表。

Metrics 封装了一个 otel Meter 与 Tracer：StartRequest/EndRequest
围绕一次调用记录 span 以及请求数、Token 数、成本与错误计数；
RecordRetry 与 RecordFallback 记录重试与降级这类低频事件。

CostCalculator 内置常见 provider/model 组合的每 1K Token 价格，
仅在某个 binding 自身未设置 PriceTable 时，由编排器的成本累加器
用作后备。
*/
package observability
