package i18n

var english = map[Key]string{
	ErrInvalidInput: "Some fields are missing or invalid.",
	ErrUnauthorized: "Please log in to continue.",
	ErrNotFound:     "Nothing was found.",
	ErrConflict:     "That already exists.",
	ErrStorageBusy:  "The database is busy. Please try again in a moment.",
	ErrAttachment:   "An attachment could not be saved. Nothing was submitted.",
	ErrRateLimited:  "You are doing that too often. Please wait a little.",
	ErrInternal:     "Something went wrong on our side.",

	ErrInvalidCredentials: "Invalid username or password.",
	ErrUsernameTaken:      "Username already exists.",
	ErrEmailTaken:         "Email already registered.",
	ErrPasswordMismatch:   "Passwords do not match.",
	ErrPasswordTooShort:   "Password must be at least 6 characters.",
	ErrPasswordTooLong:    "Password must be at most 72 bytes.",
	ErrInvalidEmail:       "Please enter a valid email address.",
	ErrPlantNameRequired:  "Plant name is required.",

	FieldRequired: "%s is required",
	FieldEmail:    "%s must be a valid email",
	FieldMin:      "%s must be at least %s",
	FieldMax:      "%s must be at most %s",
	FieldOneOf:    "%s must be one of: %s",
	FieldEqual:    "%s must match %s",
	FieldInvalid:  "%s is invalid",

	StatusPublic:  "Public",
	StatusPrivate: "Private",

	MsgRegistered:  "Registration successful. You are now logged in.",
	MsgLoggedIn:    "Welcome back!",
	MsgProfileSave: "Profile updated.",
	MsgSubmitted:   "Thank you! Your plant knowledge was saved.",
	MsgNoLocation:  "Location not found.",
}

var hindi = map[Key]string{
	ErrInvalidInput: "कुछ फ़ील्ड खाली या अमान्य हैं।",
	ErrUnauthorized: "आगे बढ़ने के लिए कृपया लॉग इन करें।",
	ErrNotFound:     "कुछ नहीं मिला।",
	ErrConflict:     "यह पहले से मौजूद है।",
	ErrStorageBusy:  "डेटाबेस व्यस्त है। कृपया थोड़ी देर में पुनः प्रयास करें।",
	ErrAttachment:   "संलग्नक सहेजा नहीं जा सका। कुछ भी जमा नहीं हुआ।",
	ErrRateLimited:  "आप यह बहुत बार कर रहे हैं। कृपया थोड़ा रुकें।",
	ErrInternal:     "हमारी ओर से कुछ गलत हो गया।",

	ErrInvalidCredentials: "अमान्य उपयोगकर्ता नाम या पासवर्ड।",
	ErrUsernameTaken:      "उपयोगकर्ता नाम पहले से मौजूद है।",
	ErrEmailTaken:         "ईमेल पहले से पंजीकृत है।",
	ErrPasswordMismatch:   "पासवर्ड मेल नहीं खाते।",
	ErrPasswordTooShort:   "पासवर्ड कम से कम 6 अक्षरों का होना चाहिए।",
	ErrPasswordTooLong:    "पासवर्ड अधिकतम 72 बाइट का हो सकता है।",
	ErrInvalidEmail:       "कृपया एक मान्य ईमेल पता दर्ज करें।",
	ErrPlantNameRequired:  "पौधे का नाम आवश्यक है।",

	FieldRequired: "%s आवश्यक है",
	FieldEmail:    "%s एक मान्य ईमेल होना चाहिए",
	FieldMin:      "%s कम से कम %s होना चाहिए",
	FieldMax:      "%s अधिकतम %s होना चाहिए",
	FieldOneOf:    "%s इनमें से एक होना चाहिए: %s",
	FieldEqual:    "%s को %s से मेल खाना चाहिए",
	FieldInvalid:  "%s अमान्य है",

	StatusPublic:  "सार्वजनिक",
	StatusPrivate: "निजी",

	MsgRegistered:  "पंजीकरण सफल। आप अब लॉग इन हैं।",
	MsgLoggedIn:    "फिर से स्वागत है!",
	MsgProfileSave: "प्रोफ़ाइल अपडेट की गई।",
	MsgSubmitted:   "धन्यवाद! आपका पौधों का ज्ञान सहेजा गया।",
	MsgNoLocation:  "स्थान नहीं मिला।",
}

var indonesian = map[Key]string{
	ErrInvalidInput: "Beberapa isian kosong atau tidak valid.",
	ErrUnauthorized: "Silakan masuk untuk melanjutkan.",
	ErrNotFound:     "Data tidak ditemukan.",
	ErrConflict:     "Data tersebut sudah ada.",
	ErrStorageBusy:  "Basis data sedang sibuk. Silakan coba lagi sebentar lagi.",
	ErrAttachment:   "Lampiran gagal disimpan. Tidak ada yang terkirim.",
	ErrRateLimited:  "Terlalu sering. Silakan tunggu sebentar.",
	ErrInternal:     "Terjadi kesalahan di sisi kami.",

	ErrInvalidCredentials: "Username atau password salah.",
	ErrUsernameTaken:      "Username sudah digunakan.",
	ErrEmailTaken:         "Email sudah terdaftar.",
	ErrPasswordMismatch:   "Password tidak sama.",
	ErrPasswordTooShort:   "Password minimal 6 karakter.",
	ErrPasswordTooLong:    "Password maksimal 72 byte.",
	ErrInvalidEmail:       "Masukkan alamat email yang valid.",
	ErrPlantNameRequired:  "Nama tanaman wajib diisi.",

	FieldRequired: "%s wajib diisi",
	FieldEmail:    "%s harus berupa email yang valid",
	FieldMin:      "%s minimal %s",
	FieldMax:      "%s maksimal %s",
	FieldOneOf:    "%s harus salah satu dari: %s",
	FieldEqual:    "%s harus sama dengan %s",
	FieldInvalid:  "%s tidak valid",

	StatusPublic:  "Publik",
	StatusPrivate: "Pribadi",

	MsgRegistered:  "Pendaftaran berhasil. Anda sudah masuk.",
	MsgLoggedIn:    "Selamat datang kembali!",
	MsgProfileSave: "Profil diperbarui.",
	MsgSubmitted:   "Terima kasih! Pengetahuan tanaman Anda tersimpan.",
}
