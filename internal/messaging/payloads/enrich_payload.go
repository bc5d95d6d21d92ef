package payloads

// EnrichPayload представляет заявку на обогащение каталога
// названием фильма через RabbitMQ.
type EnrichPayload struct {
	Title string `json:"title"`
}
