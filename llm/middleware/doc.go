// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 middleware 提供编排器的洋葱模型钩子链：一组按注册顺序下行、
逆序上行的 Hook，共享同一个可变的 Context。

# 核心接口

  - Context：一次调用的共享可变状态（binding、requestId、
    request、response、err、起止时间）。
  - Next：func(ctx, *Context) error，链中剩余部分的延续。
  - Hook：func(Next) Next，一个钩子装饰器。
  - Chain：钩子链，支持 Use 追加与 Then 组合执行。

# 内置钩子

  - Logging：记录调用起止与耗时。
  - Recovery：捕获 panic 并转换为错误返回。
  - Metrics：围绕调用记录 OpenTelemetry 指标与 span。
  - Tracing：独立的 span 包装，供未启用 Metrics 的链使用。
*/
package middleware
