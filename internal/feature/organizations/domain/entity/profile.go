package entity

// Profile はWebサイトから抽出した組織のプロフィール情報です。
type Profile struct {
	Description string
	Keywords    []string
	Industry    string
}
