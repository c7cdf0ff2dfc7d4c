package user

type credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"32" doc:"Логин"`
	Password string `json:"password" minLength:"1" doc:"Пароль"`
}

type registerRequest struct {
	credentials
	Role string `json:"role,omitempty" doc:"Роль: viewer или editor"`
}

type registerInput struct {
	Body registerRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID     int    `json:"user_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type loginInput struct {
	Body credentials
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
