// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的编排器调用指标采集，按绑定
（binding，即 provider:model）维度分组。

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry；与 llm 包内通过手动
prometheus.MustRegister 注册的可靠性栈指标互为补充，分别覆盖
"调用结果"与"可靠性栈状态"两个维度。

# 核心类型

  - Collector：按 binding 记录调用总数、耗时、token 用量与成本。
*/
package metrics
