// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 streaming 提供编排器流式调用（stream.chat）所需的增量中继：
一个带缓冲、可取消的单生产者/单消费者通道封装，独立于具体的增量类型。

# 核心类型

  - Relay[T]：中继一路增量。Send 在消费者未读取、调用方取消或中继
    已关闭前阻塞；Recv/Chan 供消费端读取。
  - Stats：中继生命周期内的 produced/consumed 计数快照。

流式调用不能像普通背压流那样静默丢弃内容增量，因此本包不提供丢弃
策略：背压只体现为 Send 的阻塞。
*/
package streaming
