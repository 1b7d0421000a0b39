package web

import "strings"

func makeMap(list string) map[string]bool {
	m := make(map[string]bool)
	for _, tag := range strings.Split(list, ",") {
		m[tag] = true
	}
	return m
}

var (
	htmlTags = makeMap("html,body,base,head,link,meta,style,title," +
		"address,article,aside,footer,header,h1,h2,h3,h4,h5,h6,hgroup,nav,section," +
		"div,dd,dl,dt,figcaption,figure,picture,hr,img,li,main,ol,p,pre,ul," +
		"a,b,abbr,bdi,bdo,br,cite,code,data,dfn,em,i,kbd,mark,q,rp,rt,rtc,ruby," +
		"s,samp,small,span,strong,sub,sup,time,u,var,wbr,area,audio,map,track,video," +
		"embed,object,param,source,canvas,script,noscript,del,ins," +
		"caption,col,colgroup,table,thead,tbody,td,th,tr," +
		"button,datalist,fieldset,form,input,label,legend,meter,optgroup,option," +
		"output,progress,select,textarea," +
		"details,dialog,menu,menuitem,summary," +
		"content,element,shadow,template,blockquote,iframe,tfoot")

	svgTags = makeMap("svg,animate,circle,clippath,cursor,defs,desc,ellipse,filter,font-face," +
		"foreignobject,g,glyph,image,line,marker,mask,missing-glyph,path,pattern," +
		"polygon,polyline,rect,switch,symbol,text,textpath,tspan,use,view")

	unaryTags = makeMap("area,base,br,col,embed,frame,hr,img,input,isindex,keygen," +
		"link,meta,param,source,track,wbr")

	// теги, закрывающий тег которых можно опустить
	leftOpenTags = makeMap("colgroup,dd,dt,li,options,p,td,tfoot,th,thead,tr,source")
)

// IsReservedTag reports HTML and SVG tags; everything else is a component.
func IsReservedTag(tag string) bool {
	return htmlTags[tag] || svgTags[tag]
}

// IsUnaryTag reports void elements.
func IsUnaryTag(tag string) bool {
	return unaryTags[tag]
}

// IsPreTag reports elements whose whitespace is kept.
func IsPreTag(tag string) bool {
	return tag == "pre"
}

// CanBeLeftOpenTag reports elements whose end tag may be omitted.
func CanBeLeftOpenTag(tag string) bool {
	return leftOpenTags[tag]
}
