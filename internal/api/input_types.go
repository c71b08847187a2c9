package api

type registerInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
	DisplayName     string `json:"display_name" form:"display_name"`
}

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type intakePayload struct {
	MedicationName string `json:"medication_name" form:"medication_name"`
	Dosage         string `json:"dosage" form:"dosage"`
	Frequency      string `json:"frequency" form:"frequency"`
	Description    string `json:"description" form:"description"`
}

type linkInput struct {
	Email string `json:"email" form:"email"`
}
