package ports

// Broadcaster рассылает типизированные события подключённым live-клиентам.
// Доставка fire-and-forget: без гарантий, без повторов, закрытые клиенты
// молча пропускаются. Сбои рассылки не влияют на персистентность.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}
