package omdb

// OMDbMovieResponse описывает ответ OMDb API на поиск по названию.
// Все поля приходят строками; нормализация типов — на стороне клиента.
type OMDbMovieResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`

	// Response — "True"/"False"; при "False" заполнено поле Error.
	Response string `json:"Response"`
	Error    string `json:"Error"`
}
